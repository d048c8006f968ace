package parser

// DefaultCategory is assigned when no keyword matches.
const DefaultCategory = "その他"

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules are checked in order; the first rule with a keyword contained
// in the item wins.
var DefaultRules = []Rule{
	{Category: "食費", Keywords: []string{"スーパー", "コンビニ", "パン", "弁当", "ランチ", "昼食", "夕食", "朝食", "カフェ", "コーヒー", "お菓子", "野菜", "肉", "米"}},
	{Category: "交通費", Keywords: []string{"電車", "バス", "タクシー", "切符", "定期", "ガソリン", "駐車"}},
	{Category: "自己投資", Keywords: []string{"参考書", "本", "書籍", "講座", "セミナー", "資格", "勉強"}},
	{Category: "交際費", Keywords: []string{"プレゼント", "飲み会", "友達", "誕生日", "ご祝儀", "お土産"}},
	{Category: "日用品", Keywords: []string{"洗剤", "ティッシュ", "シャンプー", "薬局", "ドラッグストア", "トイレットペーパー"}},
	{Category: "趣味・娯楽", Keywords: []string{"映画", "ゲーム", "漫画", "ライブ", "カラオケ", "旅行"}},
	{Category: "住居・光熱費", Keywords: []string{"家賃", "電気", "ガス代", "水道", "ネット代"}},
}
