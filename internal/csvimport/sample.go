package csvimport

// SampleCSV はユーザー向けダウンロード用のサンプルCSVを返す。
// ヘッダーの並びと全フィールドの引用形式（内部の " は "" に二重化）は
// ダウンストリームのツールが位置で解釈するため、バイト単位で固定する。
func SampleCSV() string {
	return `"full_name","email","phone","birthday","first_name","department","role"
"Ayesha Rahman","ayesha.rahman@example.com","01712345678","1992-03-15","Ayesha","Engineering","Developer"
"Tanvir Ahmed","tanvir.ahmed@example.com","8801898765432","15/08/1988","Tanvir","Sales","Manager"
"Nusrat Jahan","nusrat.jahan@example.com","","1995-11-02","","HR",""
`
}
