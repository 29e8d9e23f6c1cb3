package market

// Static country -> market tables. Loaded once at process start, never
// mutated. Market C is the catch-all for recognized countries absent from
// A and B.

var marketA = map[string]bool{
	"australia": true, "austria": true, "belgium": true, "canada": true,
	"denmark": true, "finland": true, "france": true, "germany": true,
	"iceland": true, "ireland": true, "italy": true, "japan": true,
	"luxembourg": true, "netherlands": true, "new zealand": true,
	"norway": true, "portugal": true, "spain": true, "sweden": true,
	"switzerland": true, "united kingdom": true, "united states": true,
}

var marketB = map[string]bool{
	"bahrain": true, "barbados": true, "brazil": true, "cayman islands": true,
	"chile": true, "china": true, "colombia": true, "cyprus": true,
	"czechia": true, "estonia": true, "greece": true, "hong kong": true,
	"indonesia": true, "israel": true, "jamaica": true, "korea": true,
	"kuwait": true, "latvia": true, "lithuania": true, "malaysia": true,
	"malta": true, "mexico": true, "north macedonia": true, "oman": true,
	"philippines": true, "poland": true, "puerto rico": true, "qatar": true,
	"saudi arabia": true, "senegal": true, "singapore": true,
	"slovakia": true, "slovenia": true, "south africa": true, "taiwan": true,
	"thailand": true, "united arab emirates": true, "uruguay": true,
}

var marketCKnown = map[string]bool{
	"india": true, "vietnam": true, "pakistan": true, "bangladesh": true,
	"nepal": true, "sri lanka": true, "argentina": true, "peru": true,
	"nigeria": true, "kenya": true, "morocco": true, "algeria": true,
	"tunisia": true, "turkey": true,
}

// Hourly rate per market tier, USD.
var marketRate = map[string]int{"A": 163, "B": 116, "C": 70}

// ISO2 codes are matched only as UPPERCASE tokens to avoid collisions with
// common lowercase words ("in", "it", "us", ...).
var iso2ToName = map[string]string{
	"AU": "australia", "AT": "austria", "BE": "belgium", "CA": "canada",
	"DK": "denmark", "FI": "finland", "FR": "france", "DE": "germany",
	"IS": "iceland", "IE": "ireland", "IT": "italy", "JP": "japan",
	"LU": "luxembourg", "NL": "netherlands", "NZ": "new zealand",
	"NO": "norway", "PT": "portugal", "ES": "spain", "SE": "sweden",
	"CH": "switzerland", "GB": "united kingdom", "UK": "united kingdom",
	"US": "united states",
	"BH": "bahrain", "BB": "barbados", "BR": "brazil", "KY": "cayman islands",
	"CL": "chile", "CN": "china", "CO": "colombia", "CY": "cyprus",
	"CZ": "czechia", "EE": "estonia", "GR": "greece", "HK": "hong kong",
	"ID": "indonesia", "IL": "israel", "JM": "jamaica", "KR": "korea",
	"KW": "kuwait", "LV": "latvia", "LT": "lithuania", "MY": "malaysia",
	"MT": "malta", "MX": "mexico", "MK": "north macedonia", "OM": "oman",
	"PH": "philippines", "PL": "poland", "PR": "puerto rico", "QA": "qatar",
	"SA": "saudi arabia", "SN": "senegal", "SG": "singapore",
	"SK": "slovakia", "SI": "slovenia", "ZA": "south africa", "TW": "taiwan",
	"TH": "thailand", "AE": "united arab emirates", "UY": "uruguay",
	"IN": "india", "VN": "vietnam", "PK": "pakistan", "BD": "bangladesh",
	"NP": "nepal", "LK": "sri lanka", "TR": "turkey", "NG": "nigeria",
	"KE": "kenya", "AR": "argentina", "PE": "peru", "MA": "morocco",
	"DZ": "algeria", "TN": "tunisia",
}

var iso3ToName = map[string]string{
	"AUS": "australia", "AUT": "austria", "BEL": "belgium", "CAN": "canada",
	"DNK": "denmark", "FIN": "finland", "FRA": "france", "DEU": "germany",
	"ISL": "iceland", "IRL": "ireland", "ITA": "italy", "JPN": "japan",
	"LUX": "luxembourg", "NLD": "netherlands", "NZL": "new zealand",
	"NOR": "norway", "PRT": "portugal", "ESP": "spain", "SWE": "sweden",
	"CHE": "switzerland", "GBR": "united kingdom", "USA": "united states",
	"BHR": "bahrain", "BRB": "barbados", "BRA": "brazil", "CYM": "cayman islands",
	"CHL": "chile", "CHN": "china", "COL": "colombia", "CYP": "cyprus",
	"CZE": "czechia", "EST": "estonia", "GRC": "greece", "HKG": "hong kong",
	"IDN": "indonesia", "ISR": "israel", "JAM": "jamaica", "KOR": "korea",
	"KWT": "kuwait", "LVA": "latvia", "LTU": "lithuania", "MYS": "malaysia",
	"MLT": "malta", "MEX": "mexico", "MKD": "north macedonia", "OMN": "oman",
	"PHL": "philippines", "POL": "poland", "PRI": "puerto rico", "QAT": "qatar",
	"SAU": "saudi arabia", "SEN": "senegal", "SGP": "singapore",
	"SVK": "slovakia", "SVN": "slovenia", "ZAF": "south africa",
	"TWN": "taiwan", "THA": "thailand", "ARE": "united arab emirates",
	"URY": "uruguay",
	"IND": "india", "VNM": "vietnam", "PAK": "pakistan", "BGD": "bangladesh",
	"NPL": "nepal", "LKA": "sri lanka", "TUR": "turkey", "NGA": "nigeria",
	"KEN": "kenya", "ARG": "argentina", "PER": "peru", "MAR": "morocco",
	"DZA": "algeria", "TUN": "tunisia",
}

// Colloquial names and common typo-level aliases mapped to canonical names.
var aliases = map[string]string{
	"usa": "united states", "u.s.a": "united states", "u.s.a.": "united states",
	"us": "united states", "u.s.": "united states", "america": "united states",
	"united states of america": "united states",
	"uk": "united kingdom", "u.k.": "united kingdom", "u.k": "united kingdom",
	"great britain": "united kingdom", "britain": "united kingdom",
	"england": "united kingdom",
	"uae": "united arab emirates", "u.a.e.": "united arab emirates",
	"u.a.e": "united arab emirates",
	"south korea": "korea", "republic of korea": "korea", "rok": "korea",
	"czech republic": "czechia",
	"n. macedonia": "north macedonia", "macedonia": "north macedonia",
	"hong kong sar": "hong kong", "hk": "hong kong",
	"bharat": "india", "hindustan": "india",
}
