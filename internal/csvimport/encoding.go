package csvimport

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// BOM定数
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeToUTF8 はアップロードされたCSVバイト列の文字コードを判定し、
// BOMを除去したUTF-8文字列と判定した文字コード名を返す。
//
// 判定順序: UTF-8 BOM → UTF-16 LE/BE BOM → UTF-8として妥当 →
// Shift_JISとして置換なしでデコード可能 → Latin-1フォールバック。
// 表計算ソフトが出力するUTF-16やShift_JISの名簿をそのまま受け付けるための措置。
func DecodeToUTF8(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "utf-8", nil
	}

	if bytes.HasPrefix(data, bomUTF8) {
		return string(data[3:]), "utf-8-bom", nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := dec.Bytes(data)
		if err != nil {
			return "", "", fmt.Errorf("UTF-16 LEのデコードに失敗しました: %w", err)
		}
		return string(decoded), "utf-16le", nil
	}

	if bytes.HasPrefix(data, bomUTF16BE) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, err := dec.Bytes(data)
		if err != nil {
			return "", "", fmt.Errorf("UTF-16 BEのデコードに失敗しました: %w", err)
		}
		return string(decoded), "utf-16be", nil
	}

	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	// Excelが出力するShift_JISの名簿を想定。
	// x/textのデコーダーは不正なバイトをU+FFFDに置換して常に妥当なUTF-8を
	// 返すため、置換が発生しなかった場合のみShift_JISとして受理する。
	if decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), "shift_jis", nil
	}

	// 最終フォールバック: Latin-1は全バイト列を受理する
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("Latin-1のデコードに失敗しました: %w", err)
	}
	return string(decoded), "latin-1", nil
}
