package csvimport

import "strings"

// headerSynonyms は表記ゆれのあるヘッダー名を正規フィールド名に対応付ける。
// キーは小文字・トリム済みで照合する。表にないヘッダーはそのまま通し、
// スキーマ検証では無視される。
var headerSynonyms = map[string]string{
	// full_name
	"full_name": "full_name",
	"fullname":  "full_name",
	"full name": "full_name",
	"name":      "full_name",

	// first_name
	"first_name": "first_name",
	"firstname":  "first_name",
	"first name": "first_name",

	// email
	"email":         "email",
	"e-mail":        "email",
	"mail":          "email",
	"email address": "email",
	"email_address": "email",

	// phone
	"phone":         "phone",
	"phone number":  "phone",
	"phone_number":  "phone",
	"mobile":        "phone",
	"mobile number": "phone",
	"whatsapp":      "phone",

	// birthday
	"birthday":      "birthday",
	"dob":           "birthday",
	"date_of_birth": "birthday",
	"date of birth": "birthday",
	"birthdate":     "birthday",
	"birth date":    "birthday",

	// department
	"department": "department",
	"dept":       "department",
	"team":       "department",

	// role
	"role":        "role",
	"title":       "role",
	"job_title":   "role",
	"designation": "role",
}

// normalizeHeader はヘッダー名を小文字・トリムし、類義語表で正規名に変換する。
func normalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	if canonical, ok := headerSynonyms[key]; ok {
		return canonical
	}
	return key
}
