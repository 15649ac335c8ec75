package sentiment

// baseLexicon maps normalized tokens to sentiment weights in [-5, 5]. The
// vocabulary skews toward the slang that dominates meme-coin posts; plain
// English fillers score zero by omission.
var baseLexicon = map[string]float64{
	// bullish
	"moon":     4,
	"rocket":   4,
	"pump":     3,
	"gem":      4,
	"bull":     3,
	"bullish":  4,
	"gain":     3,
	"profit":   3,
	"win":      3,
	"winner":   3,
	"great":    3,
	"amazing":  4,
	"love":     3,
	"best":     3,
	"fire":     3,
	"explode":  3,
	"surge":    3,
	"rally":    3,
	"breakout": 3,
	"ath":      3,
	"lfg":      4,
	"wagmi":    3,
	"hodl":     2,
	"diamond":  2,
	"alpha":    3,
	"lambo":    3,
	"legit":    2,
	"solid":    2,
	"strong":   2,
	"early":    2,
	"huge":     2,
	"big":      2,
	"good":     2,
	"hot":      2,
	"rich":     2,
	"buy":      1,
	"long":     1,
	"up":       1,

	// bearish
	"rug":      -5,
	"rugpull":  -5,
	"scam":     -5,
	"scammer":  -5,
	"honeypot": -5,
	"ponzi":    -5,
	"fraud":    -4,
	"crash":    -4,
	"rekt":     -4,
	"hack":     -4,
	"exploit":  -4,
	"stolen":   -4,
	"drain":    -4,
	"dump":     -3,
	"loss":     -3,
	"loser":    -3,
	"terrible": -3,
	"awful":    -3,
	"avoid":    -3,
	"fake":     -3,
	"dead":     -3,
	"fud":      -3,
	"bleed":    -3,
	"trash":    -3,
	"garbage":  -3,
	"sketchy":  -3,
	"sus":      -3,
	"danger":   -3,
	"bear":     -2,
	"bearish":  -2,
	"lose":     -2,
	"bad":      -2,
	"fear":     -2,
	"weak":     -2,
	"risky":    -2,
	"warning":  -2,
	"sell":     -1,
	"short":    -1,
	"down":     -1,
}
