package colors

// DefaultScheme is used when a chart names no scheme or an unknown one.
const DefaultScheme = "supersetColors"

// Schemes holds the categorical palettes charts can refer to by name.
var Schemes = map[string][]string{
	"supersetColors": {
		"#1FA8C9", "#454E7C", "#5AC189", "#FF7F44", "#666666", "#E04355",
		"#FCC700", "#A868B7", "#3CCCCB", "#A38F79", "#8FD3E4", "#A1A6BD",
		"#ACE1C4", "#FEC0A1", "#B2B2B2", "#EFA1AA", "#FDE380", "#D3B3DA",
		"#9EE5E5", "#D1C6BC",
	},
	"bnbColors": {
		"#ff5a5f", "#7b0051", "#007A87", "#00d1c1", "#8ce071", "#ffb400",
		"#b4a76c", "#ff8083", "#cc0086", "#00a1b3", "#00ffeb", "#bbedab",
		"#ffd266", "#cbc29a", "#ff3339", "#ff1ab1", "#005c66", "#00b3a5",
		"#55d12e", "#b37e00", "#988b4e",
	},
	"d3Category10": {
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	},
	"googleCategory20c": {
		"#3366cc", "#dc3912", "#ff9900", "#109618", "#990099", "#0099c6",
		"#dd4477", "#66aa00", "#b82e2e", "#316395", "#994499", "#22aa99",
		"#aaaa11", "#6633cc", "#e67300", "#8b0707", "#651067", "#329262",
		"#5574a6", "#3b3eac",
	},
}
