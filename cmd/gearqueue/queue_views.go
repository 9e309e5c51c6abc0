package main

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"gearqueue/internal/queue"
)

type jobView struct {
	Unique   string `json:"unique"`
	Function string `json:"function"`
	Priority string `json:"priority"`
	Size     int    `json:"size"`
	Data     []byte `json:"data"`
}

func toJobViews(items []queue.Item) []jobView {
	views := make([]jobView, 0, len(items))
	for _, item := range items {
		views = append(views, jobView{
			Unique:   item.Unique,
			Function: item.FunctionName,
			Priority: item.Priority.String(),
			Size:     len(item.Data),
			Data:     item.Data,
		})
	}
	return views
}

func jobRows(items []queue.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			displayKey(item.Unique),
			displayKey(item.FunctionName),
			item.Priority.String(),
			humanize.Bytes(uint64(len(item.Data))),
		})
	}
	return rows
}

// sortItems orders items the way a job server hands them out: by priority,
// then by unique key since replay order is unspecified.
func sortItems(items []queue.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].Unique < items[j].Unique
	})
}

// displayKey renders opaque keys verbatim when they are printable text and
// Go-quoted otherwise.
func displayKey(value string) string {
	if value == "" || !utf8.ValidString(value) || strings.IndexFunc(value, notPrintable) >= 0 {
		return strconv.Quote(value)
	}
	return value
}

func notPrintable(r rune) bool {
	return !unicode.IsPrint(r)
}
