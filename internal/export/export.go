// Package export はレポートをExcelワークブック（xlsx）として書き出す。
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

const (
	// SheetName はレポートを書き込むシート名。
	SheetName = "Report"
	// headerRow は見出し行の行番号。1行目はタイトル、2行目は生成日時。
	headerRow = 4
	// timestampLayout は生成日時の書式。
	timestampLayout = "2006-01-02 15:04:05"
)

// ContentType はxlsxファイルのMIMEタイプ。
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook はrowsを1シートのワークブックとしてwに書き出す。
// 見出しは全行のキーをソートしたもの。
func WriteWorkbook(w io.Writer, title string, rows []map[string]any) error {
	return WriteTable(w, title, Headers(rows), rows)
}

// WriteTable は見出しの順序を指定してワークブックを書き出す。
// 行に存在しない見出しのセルは空のままにする。
func WriteTable(w io.Writer, title string, headers []string, rows []map[string]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("シート名の設定に失敗: %w", err)
	}
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return fmt.Errorf("タイトルの書き込みに失敗: %w", err)
	}
	if err := f.SetCellValue(SheetName, "A2", "Generated: "+time.Now().Format(timestampLayout)); err != nil {
		return fmt.Errorf("生成日時の書き込みに失敗: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("スタイルの作成に失敗: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("スタイルの適用に失敗: %w", err)
	}

	if len(headers) == 0 {
		return f.Write(w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"CCCCCC"}},
	})
	if err != nil {
		return fmt.Errorf("スタイルの作成に失敗: %w", err)
	}

	header := make([]any, len(headers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		header[i] = h
		widths[i] = len(h)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := f.SetSheetRow(SheetName, first, &header); err != nil {
		return fmt.Errorf("見出しの書き込みに失敗: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	if err := f.SetCellStyle(SheetName, first, last, headerStyle); err != nil {
		return fmt.Errorf("スタイルの適用に失敗: %w", err)
	}

	for i, row := range rows {
		for j, h := range headers {
			v := cellValue(row[h])
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, headerRow+1+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("%sへの書き込みに失敗: %w", cell, err)
			}
			if n := len(fmt.Sprint(v)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("列幅の設定に失敗: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("ワークブックの書き出しに失敗: %w", err)
	}
	return nil
}

// cellValue はJSON由来の値をセルに書き込める値に変換する。
// オブジェクトや配列はJSON文字列として書き込む。
func cellValue(v any) any {
	switch v := v.(type) {
	case nil, string, bool, float64, int, int64:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// Headers はrowsに現れるキーをソートして返す。
func Headers(rows []map[string]any) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}
	sort.Strings(headers)
	return headers
}

// Rows はエンベロープのpathで示される配列からオブジェクトの行を取り出す。
// 例えば日次レポートの担当者別集計はRows(env, "report", "employees")で取得できる。
// 途中のキーが存在しない場合や配列でない場合はnilを返す。オブジェクトでない要素は読み飛ばす。
func Rows(env apiclient.Envelope, path ...string) []map[string]any {
	if len(path) == 0 {
		return nil
	}
	cur := env
	for _, key := range path[:len(path)-1] {
		cur = cur.Object(key)
		if cur == nil {
			return nil
		}
	}
	items, ok := cur[path[len(path)-1]].([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}
