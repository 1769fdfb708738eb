package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/dshills/mininet/internal/database"
	"github.com/dshills/mininet/internal/util/timeutil"
)

// Render writes rs as a bordered table: one header row of column names,
// then one row per record. An empty result still gets its header.
func Render(w io.Writer, rs *database.ResultSet) {
	table := tablewriter.NewWriter(w)
	// SetHeader formats and wraps immediately, so both switches come first.
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(rs.Columns)

	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()
}

// FormatValue renders one cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return timeutil.Format(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
