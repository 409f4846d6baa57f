package transfer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"taskmaster/internal/models/task"
)

// RenderTable печатает задачи выровненной таблицей в порядке коллекции
func RenderTable(w io.Writer, tasks []task.Task, categories []task.Category) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\t"+strings.Join(Header, "\t"))
	for i, t := range tasks {
		fields := row(t, categories)
		for j := range fields {
			fields[j] = strings.ReplaceAll(flatten(fields[j]), "\t", " ")
		}
		fmt.Fprintln(tw, strconv.Itoa(i+1)+"\t"+strings.Join(fields, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("вывод таблицы: %w", err)
	}
	return nil
}

func BackupFileName(now time.Time) string {
	return fmt.Sprintf("taskmaster-backup-%d.json", now.UnixMilli())
}

func CSVFileName(now time.Time) string {
	return fmt.Sprintf("taskmaster-tasks-%d.csv", now.UnixMilli())
}
