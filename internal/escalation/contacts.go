package escalation

import (
	"strings"

	"voucherbot/internal/types"
)

// Directory maps voucher programs and boroughs to human handoff contacts.
// The data is fixed at construction and read-only afterward.
type Directory struct {
	defaultContact types.ContactInfo
	programs       map[types.VoucherType]programContacts
	discrimination map[string]types.ContactInfo
}

type programContacts struct {
	key      string
	fallback types.ContactInfo
	boroughs map[types.Borough]types.ContactInfo
}

// NewDirectory builds the NYC contact directory.
func NewDirectory() *Directory {
	return &Directory{
		defaultContact: types.ContactInfo{
			Name:    "HRA General Support",
			Phone:   "718-557-1399",
			Email:   "info@hra.nyc.gov",
			Address: "109 E 16th St, Manhattan",
			Hours:   "Mon-Fri, 9am-5pm",
		},
		programs: map[types.VoucherType]programContacts{
			types.VoucherCityFHEPS: {
				key: "cityfheps",
				fallback: types.ContactInfo{
					Name:    "CityFHEPS Central Office",
					Phone:   "929-221-0047",
					Email:   "cityfheps@hra.nyc.gov",
					Address: "109 E 16th St, Manhattan",
					Hours:   "Mon-Fri, 9am-5pm",
				},
				boroughs: map[types.Borough]types.ContactInfo{
					types.BoroughManhattan: {
						Name:    "Manhattan CityFHEPS Office",
						Phone:   "212-331-4640",
						Email:   "manhattan.hra@nyc.gov",
						Address: "109 E 16th St, Manhattan",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughBrooklyn: {
						Name:    "Brooklyn CityFHEPS Office",
						Phone:   "718-557-1399",
						Email:   "brooklyn.hra@nyc.gov",
						Address: "505 Clermont Ave, Brooklyn",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughBronx: {
						Name:    "Bronx CityFHEPS Office",
						Phone:   "718-503-4080",
						Email:   "bronx.hra@nyc.gov",
						Address: "1916 Park Ave, Bronx",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughQueens: {
						Name:    "Queens CityFHEPS Office",
						Phone:   "718-784-7216",
						Email:   "queens.hra@nyc.gov",
						Address: "32-20 Northern Blvd, Queens",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughStatenIsland: {
						Name:    "Staten Island CityFHEPS Office",
						Phone:   "718-390-8418",
						Email:   "statenisland.hra@nyc.gov",
						Address: "201 Bay St, Staten Island",
						Hours:   "Mon-Fri, 9am-5pm",
					},
				},
			},
			types.VoucherSection8: {
				key: "section8",
				fallback: types.ContactInfo{
					Name:    "NYCHA Section 8 Central Office",
					Phone:   "718-707-7771",
					Email:   "section8@nycha.nyc.gov",
					Address: "478 E. 165th St., Bronx",
					Hours:   "Mon-Fri, 9am-5pm",
				},
				boroughs: map[types.Borough]types.ContactInfo{
					types.BoroughManhattan: {
						Name:    "Manhattan NYCHA Section 8 Office",
						Phone:   "212-306-3000",
						Email:   "manhattan.s8@nycha.nyc.gov",
						Address: "55 West 125th Street, Manhattan",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughBrooklyn: {
						Name:    "Brooklyn NYCHA Section 8 Office",
						Phone:   "718-649-6400",
						Email:   "brooklyn.s8@nycha.nyc.gov",
						Address: "787 Atlantic Ave, Brooklyn",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughBronx: {
						Name:    "Bronx NYCHA Section 8 Office",
						Phone:   "718-409-8626",
						Email:   "bronx.s8@nycha.nyc.gov",
						Address: "478 E. 165th St., Bronx",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughQueens: {
						Name:    "Queens NYCHA Section 8 Office",
						Phone:   "718-206-3286",
						Email:   "queens.s8@nycha.nyc.gov",
						Address: "90-27 Sutphin Blvd, Queens",
						Hours:   "Mon-Fri, 9am-5pm",
					},
					types.BoroughStatenIsland: {
						Name:    "Staten Island NYCHA Section 8 Office",
						Phone:   "718-816-1521",
						Email:   "statenisland.s8@nycha.nyc.gov",
						Address: "120 Stuyvesant Pl, Staten Island",
						Hours:   "Mon-Fri, 9am-5pm",
					},
				},
			},
			types.VoucherHASA: {
				key: "hasa",
				fallback: types.ContactInfo{
					Name:    "HIV/AIDS Services Administration",
					Phone:   "212-971-0626",
					Email:   "hasa@hra.nyc.gov",
					Address: "12 W 14th St, Manhattan",
					Hours:   "Mon-Fri, 9am-5pm",
				},
			},
		},
		discrimination: map[string]types.ContactInfo{
			"cchr": {
				Name:    "NYC Commission on Human Rights",
				Phone:   "212-416-0197",
				Email:   "complaints@cchr.nyc.gov",
				Address: "22 Reade St, New York, NY 10007",
				Hours:   "Mon-Fri, 9am-5pm",
			},
			"housing-works-legal": {
				Name:    "Housing Works Legal Team",
				Phone:   "347-473-7400",
				Email:   "legal@housingworks.org",
				Address: "57 Willoughby St, Brooklyn",
				Hours:   "Mon-Fri, 9am-5pm",
			},
			"fair-housing-justice": {
				Name:    "Fair Housing Justice Center",
				Phone:   "212-400-8201",
				Email:   "fhjc@fairhousingjustice.org",
				Address: "30-30 Northern Blvd, Long Island City",
				Hours:   "Mon-Fri, 9am-5pm",
			},
		},
	}
}

// Lookup picks the handoff contact for a voucher program and borough.
// Discrimination cases route to legal or commission contacts; HASA
// discrimination specifically goes to the Housing Works legal team.
func (d *Directory) Lookup(voucher *types.VoucherType, borough *types.Borough, discrimination bool) (string, types.ContactInfo) {
	if discrimination {
		if voucher != nil && *voucher == types.VoucherHASA {
			return "housing-works-legal", d.discrimination["housing-works-legal"]
		}
		if voucher != nil && borough != nil {
			if prog, ok := d.programs[*voucher]; ok {
				if contact, ok := prog.boroughs[*borough]; ok {
					return prog.key + "-" + boroughKey(*borough), contact
				}
			}
		}
		return "cchr", d.discrimination["cchr"]
	}

	if voucher != nil {
		if prog, ok := d.programs[*voucher]; ok {
			if borough != nil {
				if contact, ok := prog.boroughs[*borough]; ok {
					return prog.key + "-" + boroughKey(*borough), contact
				}
			}
			return prog.key, prog.fallback
		}
	}
	return "hra-general", d.defaultContact
}

func boroughKey(b types.Borough) string {
	return strings.ReplaceAll(strings.ToLower(string(b)), " ", "_")
}
