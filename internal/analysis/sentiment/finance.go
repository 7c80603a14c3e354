package sentiment

// financeValence rates money vocabulary on the VADER scale of roughly -4 to
// +4.
var financeValence = map[string]float64{
	"profit": 1.9, "profits": 1.9, "gains": 2.0, "growth": 1.6, "bonus": 2.0,
	"rally": 1.4, "bullish": 1.8, "surge": 1.2, "returns": 0.8, "dividend": 0.9,
	"fortune": 1.4, "rich": 1.9, "boom": 1.2, "guaranteed": 1.3, "jackpot": 2.2,

	"crash": -1.7, "crashing": -1.7, "crashed": -1.8, "debt": -1.5, "debts": -1.5,
	"owe": -1.2, "overspend": -1.5, "overspending": -1.5, "bankrupt": -2.6,
	"bankruptcy": -2.6, "recession": -2.0, "inflation": -0.9, "bearish": -1.5,
	"plunge": -1.8, "dip": -0.6, "fees": -0.5, "penalty": -1.6, "unemployed": -2.0,
	"layoff": -1.9, "emi": -0.4, "losses": -1.7,
}
