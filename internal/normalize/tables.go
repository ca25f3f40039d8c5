package normalize

import "voucherbot/internal/types"

// Alias tables are built once at package init and never mutated afterward,
// so concurrent router calls can read them without locking.

// boroughAliases maps lowercased tokens to canonical boroughs. Multilingual
// entries cover the languages the assistant supports (en, es, zh, bn).
// "nyc" is deliberately absent: it is too vague to resolve to one borough.
var boroughAliases = map[string]types.Borough{
	// English full names and abbreviations
	"manhattan":     types.BoroughManhattan,
	"mnh":           types.BoroughManhattan,
	"midtown":       types.BoroughManhattan,
	"the city":      types.BoroughManhattan,
	"city":          types.BoroughManhattan,
	"brooklyn":      types.BoroughBrooklyn,
	"bk":            types.BoroughBrooklyn,
	"bklyn":         types.BoroughBrooklyn,
	"queens":        types.BoroughQueens,
	"qns":           types.BoroughQueens,
	"que":           types.BoroughQueens,
	"bronx":         types.BoroughBronx,
	"the bronx":     types.BoroughBronx,
	"bx":            types.BoroughBronx,
	"staten island": types.BoroughStatenIsland,
	"staten_island": types.BoroughStatenIsland,
	"staten":        types.BoroughStatenIsland,
	"si":            types.BoroughStatenIsland,

	// Spanish
	"isla staten": types.BoroughStatenIsland,

	// Chinese
	"布朗克斯":  types.BoroughBronx,
	"布朗士":   types.BoroughBronx,
	"布鲁克林":  types.BoroughBrooklyn,
	"曼哈顿":   types.BoroughManhattan,
	"皇后区":   types.BoroughQueens,
	"皇后":    types.BoroughQueens,
	"史泰登岛":  types.BoroughStatenIsland,

	// Bengali
	"ব্রংক্স":             types.BoroughBronx,
	"ব্রনক্স":             types.BoroughBronx,
	"ব্রুকলিন":            types.BoroughBrooklyn,
	"ম্যানহাটান":          types.BoroughManhattan,
	"কুইন্স":              types.BoroughQueens,
	"স্ট্যাটেন আইল্যান্ড": types.BoroughStatenIsland,
}

// voucherAliases maps lowercased tokens to canonical voucher programs.
var voucherAliases = map[string]types.VoucherType{
	// Section 8
	"section 8":     types.VoucherSection8,
	"section-8":     types.VoucherSection8,
	"section8":      types.VoucherSection8,
	"section eight": types.VoucherSection8,
	"s8":            types.VoucherSection8,
	"sec 8":         types.VoucherSection8,
	"sec8":          types.VoucherSection8,

	// CityFHEPS ("cityfeps" is a common misspelling)
	"cityfheps":  types.VoucherCityFHEPS,
	"city fheps": types.VoucherCityFHEPS,
	"cityfeps":   types.VoucherCityFHEPS,
	"fheps":      types.VoucherCityFHEPS,
	"cfheps":     types.VoucherCityFHEPS,

	// Agency programs
	"hasa": types.VoucherHASA,
	"hpd":  types.VoucherHPD,
	"dss":  types.VoucherDSS,
	"hra":  types.VoucherHRA,

	// Generic
	"housing voucher":    types.VoucherGeneric,
	"voucher":            types.VoucherGeneric,
	"housing assistance": types.VoucherGeneric,

	// Spanish
	"sección 8":          types.VoucherSection8,
	"seccion 8":          types.VoucherSection8,
	"vale de vivienda":   types.VoucherGeneric,
	"voucher de vivienda": types.VoucherGeneric,
	"cupón de vivienda":  types.VoucherGeneric,

	// Chinese
	"住房券":  types.VoucherGeneric,
	"租房券":  types.VoucherGeneric,
	"住房补助": types.VoucherGeneric,
	"第八条":  types.VoucherSection8,

	// Bengali
	"ভাউচার":        types.VoucherGeneric,
	"হাউজিং ভাউচার": types.VoucherGeneric,
	"আবাসন ভাউচার":  types.VoucherGeneric,
	"সেকশন ৮":       types.VoucherSection8,
}

// Canonical names must round-trip through their own tables so normalization
// is idempotent; the lowercased canonical forms above guarantee that.

// bedroomWords maps number words to bedroom counts. "studio" is zero.
var bedroomWords = map[string]int{
	"studio": 0,
	"one":    1,
	"two":    2,
	"three":  3,
	"four":   4,
	"five":   5,
	"six":    6,
	"seven":  7,
	"eight":  8,
	"nine":   9,
	"ten":    10,
}
