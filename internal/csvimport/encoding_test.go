package csvimport

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// TestDecodeToUTF8 は文字コード判定とBOM除去を検証する。
func TestDecodeToUTF8(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("名前,メール"))
	if err != nil {
		t.Fatalf("failed to build UTF-16 fixture: %v", err)
	}
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("氏名,誕生日"))
	if err != nil {
		t.Fatalf("failed to build Shift_JIS fixture: %v", err)
	}

	tests := []struct {
		name         string
		data         []byte
		want         string
		wantEncoding string
	}{
		{name: "素のUTF-8", data: []byte("full_name,email"), want: "full_name,email", wantEncoding: "utf-8"},
		{name: "UTF-8 BOM付き", data: append([]byte{0xEF, 0xBB, 0xBF}, []byte("full_name,email")...), want: "full_name,email", wantEncoding: "utf-8-bom"},
		{name: "UTF-16LE BOM付き", data: utf16le, want: "名前,メール", wantEncoding: "utf-16le"},
		{name: "Shift_JIS", data: sjis, want: "氏名,誕生日", wantEncoding: "shift_jis"},
		// 0xE9の直後の','はShift_JISの後続バイトとして不正なので、
		// Shift_JISではなくLatin-1として解釈されること
		{name: "Latin-1", data: []byte("Jos\xE9,M\xFCller"), want: "José,Müller", wantEncoding: "latin-1"},
		{name: "空入力", data: nil, want: "", wantEncoding: "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := DecodeToUTF8(tt.data)
			if err != nil {
				t.Fatalf("DecodeToUTF8 returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("decoded = %q, want %q", got, tt.want)
			}
			if enc != tt.wantEncoding {
				t.Errorf("encoding = %q, want %q", enc, tt.wantEncoding)
			}
		})
	}
}

// TestValidateBytes_UTF16 はUTF-16の名簿がそのまま検証まで通ることを検証する。
func TestValidateBytes_UTF16(t *testing.T) {
	csv := "full_name,email,birthday\nJane Doe,jane@x.com,1990-05-23\n"
	data, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(csv))
	if err != nil {
		t.Fatalf("failed to build fixture: %v", err)
	}

	result := newTestValidator().ValidateBytes(data)

	if len(result.Valid) != 1 {
		t.Fatalf("expected 1 valid row, got %d (errors: %v)", len(result.Valid), result.Errors)
	}
	if !strings.EqualFold(result.Valid[0].Email, "jane@x.com") {
		t.Errorf("Email = %q", result.Valid[0].Email)
	}
}
