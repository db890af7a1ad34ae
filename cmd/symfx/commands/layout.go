package commands

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/symfx/internal/preferences"
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "트레이딩 레이아웃 관리",
	Long: `트레이딩 패널 레이아웃(12열 그리드)을 조회하거나 초기화합니다.

Example:
  go run ./cmd/symfx layout show
  go run ./cmd/symfx layout reset
  go run ./cmd/symfx layout export layout.yaml
  go run ./cmd/symfx layout import layout.yaml`,
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "현재 레이아웃 출력",
	RunE:  runLayoutShow,
}

var layoutResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "기본 레이아웃으로 초기화",
	RunE:  runLayoutReset,
}

var layoutExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "레이아웃을 YAML 파일로 저장",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayoutExport,
}

var layoutImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "YAML 파일의 레이아웃 적용",
	Args:  cobra.ExactArgs(1),
	RunE:  runLayoutImport,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutShowCmd)
	layoutCmd.AddCommand(layoutResetCmd)
	layoutCmd.AddCommand(layoutExportCmd)
	layoutCmd.AddCommand(layoutImportCmd)
}

func runLayoutShow(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	var layout preferences.Layout
	if _, err := newDeskClient(cfg, log, deskAddr).call(cmd.Context(), http.MethodGet, "/api/layout", nil, &layout); err != nil {
		PrintError(err.Error())
		return err
	}

	printLayout(layout)
	return nil
}

func runLayoutReset(cmd *cobra.Command, args []string) error {
	return putLayout(cmd, preferences.DefaultLayout(), "Layout reset")
}

func runLayoutImport(cmd *cobra.Command, args []string) error {
	layout, err := preferences.LoadLayoutFile(args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}
	return putLayout(cmd, layout, "Layout imported from "+args[0])
}

func runLayoutExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	var layout preferences.Layout
	if _, err := newDeskClient(cfg, log, deskAddr).call(cmd.Context(), http.MethodGet, "/api/layout", nil, &layout); err != nil {
		PrintError(err.Error())
		return err
	}
	if err := preferences.WriteLayoutFile(args[0], layout); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("Layout %s written to %s", layout.Fingerprint(), args[0]))
	return nil
}

func putLayout(cmd *cobra.Command, layout preferences.Layout, done string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	var saved preferences.Layout
	if _, err := newDeskClient(cfg, log, deskAddr).call(cmd.Context(), http.MethodPut, "/api/layout", layout, &saved); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess(done)
	printLayout(saved)
	return nil
}

func printLayout(layout preferences.Layout) {
	fmt.Fprintf(out, "\nGrid: %d columns, %dpx rows\n", layout.Cols, layout.RowHeight)

	widths := []int{10, 20, 4, 4, 4, 4}
	PrintTableHeader([]string{"ID", "TITLE", "X", "Y", "W", "H"}, widths)
	for _, p := range layout.Panels {
		PrintTableRow([]string{
			p.ID, p.Title,
			strconv.Itoa(p.X), strconv.Itoa(p.Y), strconv.Itoa(p.W), strconv.Itoa(p.H),
		}, widths)
	}
}
