package gst

import "strings"

// stateByCode maps the two-digit GSTIN prefix to the canonical state name.
var stateByCode = map[string]string{
	"01": "JAMMU AND KASHMIR",
	"02": "HIMACHAL PRADESH",
	"03": "PUNJAB",
	"04": "CHANDIGARH",
	"05": "UTTARAKHAND",
	"06": "HARYANA",
	"07": "DELHI",
	"08": "RAJASTHAN",
	"09": "UTTAR PRADESH",
	"10": "BIHAR",
	"11": "SIKKIM",
	"12": "ARUNACHAL PRADESH",
	"13": "NAGALAND",
	"14": "MANIPUR",
	"15": "MIZORAM",
	"16": "TRIPURA",
	"17": "MEGHALAYA",
	"18": "ASSAM",
	"19": "WEST BENGAL",
	"20": "JHARKHAND",
	"21": "ODISHA",
	"22": "CHHATTISGARH",
	"23": "MADHYA PRADESH",
	"24": "GUJARAT",
	"26": "DADRA AND NAGAR HAVELI AND DAMAN AND DIU",
	"27": "MAHARASHTRA",
	"29": "KARNATAKA",
	"30": "GOA",
	"31": "LAKSHADWEEP",
	"32": "KERALA",
	"33": "TAMIL NADU",
	"34": "PUDUCHERRY",
	"35": "ANDAMAN AND NICOBAR ISLANDS",
	"36": "TELANGANA",
	"37": "ANDHRA PRADESH",
	"38": "LADAKH",
}

// stateAbbr maps canonical state names to the two-letter abbreviation used
// in invoice numbers.
var stateAbbr = map[string]string{
	"JAMMU AND KASHMIR":            "JK",
	"HIMACHAL PRADESH":             "HP",
	"PUNJAB":                       "PB",
	"CHANDIGARH":                   "CH",
	"UTTARAKHAND":                  "UK",
	"HARYANA":                      "HR",
	"DELHI":                        "DL",
	"RAJASTHAN":                    "RJ",
	"UTTAR PRADESH":                "UP",
	"BIHAR":                        "BR",
	"SIKKIM":                       "SK",
	"ARUNACHAL PRADESH":            "AR",
	"NAGALAND":                     "NL",
	"MANIPUR":                      "MN",
	"MIZORAM":                      "MZ",
	"TRIPURA":                      "TR",
	"MEGHALAYA":                    "ML",
	"ASSAM":                        "AS",
	"WEST BENGAL":                  "WB",
	"JHARKHAND":                    "JH",
	"ODISHA":                       "OD",
	"CHHATTISGARH":                 "CG",
	"MADHYA PRADESH":               "MP",
	"GUJARAT":                      "GJ",
	"DADRA AND NAGAR HAVELI AND DAMAN AND DIU": "DN",
	"MAHARASHTRA":                  "MH",
	"KARNATAKA":                    "KA",
	"GOA":                          "GA",
	"LAKSHADWEEP":                  "LD",
	"KERALA":                       "KL",
	"TAMIL NADU":                   "TN",
	"PUDUCHERRY":                   "PY",
	"ANDAMAN AND NICOBAR ISLANDS":  "AN",
	"TELANGANA":                    "TS",
	"ANDHRA PRADESH":               "AP",
	"LADAKH":                       "LA",
}

// CanonicalState trims, upper-cases, and collapses inner whitespace in a
// raw state name. Two-digit numeric codes are mapped through the GSTIN
// state table.
func CanonicalState(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if name, ok := stateByCode[s]; ok {
		return name
	}
	return strings.Join(strings.Fields(s), " ")
}

// StateFromGSTIN returns the canonical state name encoded in the first two
// characters of a GSTIN. Unknown prefixes return "".
func StateFromGSTIN(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return stateByCode[gstin[:2]]
}

// StateCodeFromGSTIN returns the raw two-digit prefix of a GSTIN.
func StateCodeFromGSTIN(gstin string) string {
	if len(gstin) < 2 {
		return ""
	}
	return gstin[:2]
}

// StateAbbreviation returns the two-letter abbreviation for a canonical
// state name. Unknown names fall back to the first two letters of the
// uppercased name, which keeps the mapping deterministic.
func StateAbbreviation(state string) string {
	name := CanonicalState(state)
	if abbr, ok := stateAbbr[name]; ok {
		return abbr
	}
	letters := strings.ReplaceAll(name, " ", "")
	if len(letters) < 2 {
		return "XX"
	}
	return letters[:2]
}
