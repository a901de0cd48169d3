package result

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// encodeTable renders the rows as a bordered text table for consoles and
// notebooks.
func encodeTable(ctx context.Context, s *Set) ([]byte, error) {
	schema := s.Schema()
	headers := make([]string, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		headers[i] = schema.Field(i).Name
	}

	data, err := rows(ctx, s)
	if err != nil {
		return nil, err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
	for _, row := range data {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		t.Row(cells...)
	}
	return []byte(t.Render() + "\n"), nil
}
