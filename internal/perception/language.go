package perception

import (
	"regexp"
	"strings"
)

// Keyword lists for lightweight language detection. Borough names are kept
// only in the non-Latin lists; Spanish shares too much housing vocabulary
// with English place names to count them.
var (
	spanishKeywords = []string{
		"hola", "apartamento", "vivienda", "casa", "alquiler", "renta", "busco",
		"necesito", "ayuda", "donde", "como", "que", "soy", "tengo", "quiero",
		"habitacion", "habitaciones", "dormitorio", "precio", "costo", "dinero",
		"gracias", "por favor", "dime", "dame", "encuentro", "cuanto",
		"cuantas", "puedo", "puedes", "buscar", "encontrar",
	}
	chineseKeywords = []string{
		"你好", "公寓", "住房", "房屋", "租金", "寻找", "需要", "帮助", "在哪里",
		"怎么", "什么", "我", "有", "要", "房间", "卧室", "价格", "钱",
		"住房券", "布朗克斯", "布鲁克林", "曼哈顿", "皇后区", "谢谢", "请",
		"告诉", "给我", "找到",
	}
	bengaliKeywords = []string{
		"নমস্কার", "অ্যাপার্টমেন্ট", "বাড়ি", "ভাড়া", "খুঁজছি", "প্রয়োজন",
		"সাহায্য", "কোথায়", "কিভাবে", "কি", "আমি", "আছে", "চাই",
		"রুম", "বেডরুম", "দাম", "টাকা", "ভাউচার", "ব্রঙ্কস", "ব্রুকলিন",
		"ম্যানহাটান", "কুইন্স", "ধন্যবাদ", "দয়া করে", "বলুন", "দিন", "খুঁজে",
	}
)

var (
	latinScriptRe   = regexp.MustCompile(`[a-zA-Z]`)
	spanishScriptRe = regexp.MustCompile(`[áéíóúñ¿¡ü]`)
	chineseScriptRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)
	bengaliScriptRe = regexp.MustCompile(`[\x{0980}-\x{09FF}]`)
)

// DetectLanguage picks the dominant language of a message by keyword
// counting. Spanish needs a higher threshold because single Spanish words
// show up in otherwise-English messages. Defaults to English.
func DetectLanguage(message string) string {
	lower := strings.ToLower(message)

	spanish := countKeywords(lower, spanishKeywords)
	chinese := countKeywords(message, chineseKeywords)
	bengali := countKeywords(message, bengaliKeywords)

	switch {
	case spanish >= 3:
		return "es"
	case chinese >= 2:
		return "zh"
	case bengali >= 2:
		return "bn"
	default:
		return "en"
	}
}

// DetectLanguages lists every language whose script or vocabulary appears
// in the message, for mixed-language prompt hints. Defaults to ["en"].
func DetectLanguages(message string) []string {
	var detected []string
	if latinScriptRe.MatchString(message) {
		detected = append(detected, "en")
	}
	lower := strings.ToLower(message)
	if spanishScriptRe.MatchString(message) || countKeywords(lower, []string{"pero", "español", "hola", "ayuda", "necesito"}) > 0 {
		detected = append(detected, "es")
	}
	if chineseScriptRe.MatchString(message) {
		detected = append(detected, "zh")
	}
	if bengaliScriptRe.MatchString(message) {
		detected = append(detected, "bn")
	}
	if len(detected) == 0 {
		return []string{"en"}
	}
	return detected
}

func countKeywords(message string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			n++
		}
	}
	return n
}
