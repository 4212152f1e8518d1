package csvimport

import "strings"

// countryPrefix は正規化に使う国番号。
const countryPrefix = "880"

// normalizePhone は電話番号文字列を "+<digits>" の正規形に変換する。
// 受け付ける形式は次の3つで、いずれも国番号880の番号として解釈する。
//
//	10桁の加入者番号（先頭0除く） → +880 + 10桁
//	先頭0の11桁                → 0を国番号に置き換え
//	880始まりの13桁            → そのまま + を付与
//
// 先頭0の10桁は11桁番号の桁落ちとみなして受理しない。
//
// どの形式にも一致しない場合は ok=false を返す。
func normalizePhone(raw string) (string, bool) {
	digits := stripPhoneChars(raw)
	if digits == "" {
		return "", false
	}

	switch {
	case len(digits) == 10 && digits[0] != '0':
		return "+" + countryPrefix + digits, true
	case len(digits) == 11 && digits[0] == '0' && digits[1] != '0':
		return "+" + countryPrefix + digits[1:], true
	case len(digits) == 13 && strings.HasPrefix(digits, countryPrefix):
		return "+" + digits, true
	}
	return "", false
}

// stripPhoneChars は空白・ハイフン・括弧・先頭の+を取り除き、数字列を返す。
// 数字以外の文字が残っている場合は空文字を返す。
func stripPhoneChars(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '(' || c == ')':
			// 区切り文字は無視する
		default:
			return ""
		}
	}
	return b.String()
}
