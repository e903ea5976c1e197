package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ── 名单导入业务错误 ──

const maxRosterRows = 200

var (
	ErrRosterEmpty       = errors.New("名单文件中没有学生姓名")
	ErrRosterTooManyRows = fmt.Errorf("名单行数超过上限 %d 行", maxRosterRows)
)

// ParseRoster 解析学生名单：.xlsx 取第一个工作表的姓名列，其余按纯文本每行一个姓名
// 姓名统一转为大写，空白行被忽略
func ParseRoster(filename string, r io.Reader) ([]string, error) {
	var (
		names []string
		err   error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		names, err = parseRosterXLSX(r)
	} else {
		names, err = parseRosterText(r)
	}
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, ErrRosterEmpty
	}
	if len(names) > maxRosterRows {
		return nil, ErrRosterTooManyRows
	}
	return names, nil
}

func parseRosterText(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if name := normalizeName(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("读取名单失败: %w", err)
	}
	return names, nil
}

func parseRosterXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// 首行含 "nom" / "name" / "姓名" 列时视为表头，否则第一列即姓名
	col, start := 0, 0
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nom", "name", "alumne", "alumne/a", "姓名":
			col, start = i, 1
		}
		if start == 1 {
			break
		}
	}

	var names []string
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		if name := normalizeName(row[col]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func normalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
