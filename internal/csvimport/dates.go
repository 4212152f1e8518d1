package csvimport

import (
	"regexp"
	"time"
)

// datePattern は誕生日文字列の1つの解釈パターンを表す。
// 同じ正規表現を共有するパターンがあるため、試行順序に意味がある。
type datePattern struct {
	re         *regexp.Regexp
	yearIndex  int
	monthIndex int
	dayIndex   int
}

// birthdayPatterns は誕生日のパターン群を固定順で保持する。
// DD/MM/YYYY を MM/DD/YYYY より先に試すため、両方の解釈が成立する
// 曖昧な日付（例: 03/04/2020）は常に日・月の順で解釈される。
// 月・日の順は、日先行の解釈が範囲検査かカレンダー検査で落ちた場合
// （例: 12/31/1990）にのみ到達する。
var birthdayPatterns = []datePattern{
	// YYYY-MM-DD
	{re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), yearIndex: 1, monthIndex: 2, dayIndex: 3},
	// DD/MM/YYYY
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), yearIndex: 3, monthIndex: 2, dayIndex: 1},
	// MM/DD/YYYY
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), yearIndex: 3, monthIndex: 1, dayIndex: 2},
	// DD-MM-YYYY
	{re: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), yearIndex: 3, monthIndex: 2, dayIndex: 1},
}

// parseBirthday は誕生日文字列をパターン群に固定順で照合し、
// 最初に成立した解釈のカレンダー日付（UTC 00:00:00）を返す。
// どのパターンでも成立しない場合は ok=false を返す。
//
// 各解釈は範囲検査（月1-12、日1-31、年1900..現在年）を通った後、
// time.Dateで往復検査して実在しない日付（2月31日など）を棄却する。
// 2月29日はうるう年検査をせずに受け付ける（配信時ロジックに委ねる）。
func parseBirthday(raw string, currentYear int) (time.Time, bool) {
	for _, p := range birthdayPatterns {
		m := p.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		year := atoi(m[p.yearIndex])
		month := atoi(m[p.monthIndex])
		day := atoi(m[p.dayIndex])

		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		if year < 1900 || year > currentYear {
			continue
		}

		// 2月29日はうるう年に関係なく受け付ける
		if month == 2 && day == 29 {
			return time.Date(year, time.February, 29, 0, 0, 0, 0, time.UTC), true
		}

		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
			// time.Dateの正規化で日付がずれた = 実在しない日付
			continue
		}
		return d, true
	}
	return time.Time{}, false
}

// atoi は数字のみの文字列をintに変換する。
// 正規表現で数字のみと確認済みの入力にだけ使う。
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
