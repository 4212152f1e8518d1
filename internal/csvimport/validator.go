// Package csvimport はユーザーがアップロードした名簿CSVを検証済みの
// 人物レコードへ変換するパイプラインを提供する。
//
// 不正な行で例外を投げることはなく、問題はすべて行単位の構造化エラーとして
// 返す。CSV自体がトークナイズできない場合のみ、行0の単一エラーとして
// 全体の失敗を表す。
package csvimport

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ParsedPerson は検証を通過した1行分の人物レコードを表す。
// 永続化は呼び出し側の責務で、このパッケージでは保存しない。
type ParsedPerson struct {
	FullName   string    `json:"fullName"`
	FirstName  string    `json:"firstName"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone"`
	Birthday   time.Time `json:"birthday"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role,omitempty"`
}

// RowError は1行分の検証エラーを表す。
// Rowはヘッダー行を考慮した1始まりの行番号（データ行iは i+2）。
type RowError struct {
	Row     int               `json:"row"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// Summary は検証結果の集計を表す。
// DuplicateEmailsは重複により棄却された行数で、該当行はErrorRowsにも
// 数えられる（二重計上は仕様）。
type Summary struct {
	TotalRows       int `json:"totalRows"`
	ValidRows       int `json:"validRows"`
	ErrorRows       int `json:"errorRows"`
	DuplicateEmails int `json:"duplicateEmails"`
}

// ValidationResult は検証パイプラインの出力。
// 呼び出し側のHTTP層でそのままJSONにシリアライズされる。
type ValidationResult struct {
	Valid   []ParsedPerson `json:"valid"`
	Errors  []RowError     `json:"errors"`
	Summary Summary        `json:"summary"`
}

// emailPattern はメールアドレスの構文検査。
// 厳密なRFC検証ではなく、明らかに壊れた入力を弾くための緩い検査。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator は名簿CSVの検証パイプライン。
// 呼び出し間で共有する可変状態を持たず、同一入力に対して冪等。
type Validator struct {
	now func() time.Time
}

// NewValidator はValidatorを生成する。
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorWithClock はテスト用に時計を注入してValidatorを生成する。
// 誕生日の年の上限（現在年）の判定に使われる。
func NewValidatorWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// ValidateBytes は生のアップロードバイト列を文字コード判定してから検証する。
// デコード失敗は構造的な失敗として行0の単一エラーで返す。
func (v *Validator) ValidateBytes(data []byte) *ValidationResult {
	content, _, err := DecodeToUTF8(data)
	if err != nil {
		return fatalResult(fmt.Sprintf("文字コードの判定に失敗しました: %v", err))
	}
	return v.Validate(content)
}

// Validate はCSVテキスト全体を検証し、有効行とエラーに分割した結果を返す。
//
// 不正な行データでエラーを返すことはない。CSVがトークナイズできない
// 場合のみ、行0の単一エラー（TotalRows=0, ErrorRows=1）を返し、
// 部分的なパースは試みない。
func (v *Validator) Validate(content string) *ValidationResult {
	content = strings.TrimPrefix(content, "\uFEFF")

	reader := csv.NewReader(strings.NewReader(content))
	// 列数の過不足は自前で補完・切り詰めするため可変長を許可する
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return fatalResult(fmt.Sprintf("CSVの解析に失敗しました: %v", err))
	}
	if len(records) == 0 {
		return fatalResult("CSVにヘッダー行がありません")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = normalizeHeader(h)
	}

	result := &ValidationResult{
		Valid:  []ParsedPerson{},
		Errors: []RowError{},
	}
	currentYear := v.now().Year()

	// 受理済みメールアドレス（小文字） → 受理した行番号
	seen := make(map[string]int)

	for i, record := range records[1:] {
		row := i + 2

		fields := mapRecord(headers, record)
		if isBlank(fields) {
			continue
		}
		result.Summary.TotalRows++

		// 1. スキーマ検査: 全フィールドの違反を1エラーに集約する
		if msgs := checkSchema(fields); len(msgs) > 0 {
			result.Errors = append(result.Errors, RowError{
				Row:     row,
				Message: strings.Join(msgs, "; "),
				Data:    fields,
			})
			continue
		}

		email := strings.ToLower(fields["email"])

		// 2. 誕生日のパース
		birthday, ok := parseBirthday(fields["birthday"], currentYear)
		if !ok {
			result.Errors = append(result.Errors, RowError{
				Row:     row,
				Field:   "birthday",
				Message: fmt.Sprintf("誕生日を解釈できません: %q。YYYY-MM-DD または DD/MM/YYYY 形式で入力してください", fields["birthday"]),
				Data:    fields,
			})
			continue
		}

		// 3. ファイル内の重複検出（受理済み行との照合）
		if firstRow, dup := seen[email]; dup {
			result.Errors = append(result.Errors, RowError{
				Row:     row,
				Field:   "email",
				Message: fmt.Sprintf("メールアドレスが%d行目と重複しています: %s", firstRow, email),
				Data:    fields,
			})
			result.Summary.DuplicateEmails++
			continue
		}

		// 4. 電話番号の正規化（任意フィールド）
		var phone *string
		if raw := fields["phone"]; raw != "" {
			normalized, ok := normalizePhone(raw)
			if !ok {
				result.Errors = append(result.Errors, RowError{
					Row:     row,
					Field:   "phone",
					Message: fmt.Sprintf("電話番号を解釈できません: %q。10桁の番号、0始まりの11桁、または%s始まりの13桁で入力してください", raw, countryPrefix),
					Data:    fields,
				})
				continue
			}
			phone = &normalized
		}

		// 5. first_nameの導出: 未指定ならfull_nameの最初の空白より前
		firstName := fields["first_name"]
		if firstName == "" {
			firstName = firstToken(fields["full_name"])
		}

		seen[email] = row
		result.Valid = append(result.Valid, ParsedPerson{
			FullName:   fields["full_name"],
			FirstName:  firstName,
			Email:      email,
			Phone:      phone,
			Birthday:   birthday,
			Department: fields["department"],
			Role:       fields["role"],
		})
	}

	result.Summary.ValidRows = len(result.Valid)
	result.Summary.ErrorRows = len(result.Errors)
	return result
}

// fatalResult は構造的なパース失敗を表す単一エラーの結果を生成する。
func fatalResult(message string) *ValidationResult {
	return &ValidationResult{
		Valid: []ParsedPerson{},
		Errors: []RowError{
			{Row: 0, Message: message},
		},
		Summary: Summary{TotalRows: 0, ErrorRows: 1},
	}
}

// mapRecord はヘッダーとセルを対応付けたマップを返す。
// セルはトリムし、列数の過不足は空文字で補完・切り詰めする。
// 同名ヘッダーが複数ある場合は先勝ち。
func mapRecord(headers, record []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, exists := fields[h]; exists {
			continue
		}
		v := ""
		if i < len(record) {
			v = strings.TrimSpace(record[i])
		}
		fields[h] = v
	}
	return fields
}

// isBlank は全セルが空の行かどうかを返す。
func isBlank(fields map[string]string) bool {
	for _, v := range fields {
		if v != "" {
			return false
		}
	}
	return true
}

// checkSchema は必須フィールドと長さの検査を行い、違反メッセージを返す。
func checkSchema(fields map[string]string) []string {
	var msgs []string

	fullName := fields["full_name"]
	switch {
	case fullName == "":
		msgs = append(msgs, "full_nameは必須です")
	case utf8.RuneCountInString(fullName) > 200:
		msgs = append(msgs, "full_nameは200文字以内で入力してください")
	}

	email := fields["email"]
	switch {
	case email == "":
		msgs = append(msgs, "emailは必須です")
	case !emailPattern.MatchString(email):
		msgs = append(msgs, "emailの形式が正しくありません")
	}

	if fields["birthday"] == "" {
		msgs = append(msgs, "birthdayは必須です")
	}

	return msgs
}

// firstToken は最初の空白より前のトークンを返す。
func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}
