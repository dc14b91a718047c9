// Command desglose builds cost breakdown PDFs from priced spreadsheets.
//
//	desglose build --input presupuesto.xlsx --template plantilla.pdf --out desglose.pdf
//	desglose items --input presupuesto.xlsx
//	desglose match --input presupuesto.xlsx --catalog catalogo.xlsx
//	desglose serve --config desglose.yaml
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	configFlags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
		&cli.StringFlag{Name: "log-mode", Usage: "dev or prod; overrides the configuration"},
	}
	inputFlag := &cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "priced spreadsheet (.xlsx)", Required: true}
	catalogFlag := &cli.StringFlag{Name: "catalog", Usage: "reference catalog (.xlsx)"}

	return &cli.App{
		Name:  "desglose",
		Usage: "build unit cost breakdown forms from a priced spreadsheet",
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "render one form per item onto a template PDF",
				Flags: append([]cli.Flag{
					inputFlag,
					catalogFlag,
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "template PDF; its first page is used"},
					&cli.StringFlag{Name: "logo", Usage: "logo image drawn on every page"},
					&cli.StringFlag{Name: "date", Usage: "date printed on the forms, YYYY-MM-DD (default: today)"},
					&cli.BoolFlag{Name: "two-per-page", Usage: "print two items per page"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PDF", Value: "desglose.pdf"},
				}, configFlags...),
				Action: BuildAction,
			},
			{
				Name:   "items",
				Usage:  "print the line items found in the spreadsheet",
				Flags:  append([]cli.Flag{inputFlag}, configFlags...),
				Action: ItemsAction,
			},
			{
				Name:  "match",
				Usage: "print the catalog match of every item",
				Flags: append([]cli.Flag{
					inputFlag,
					catalogFlag,
				}, configFlags...),
				Action: MatchAction,
			},
			{
				Name:  "serve",
				Usage: "serve POST /generate over HTTP",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "listen", Usage: "listen address; overrides the configuration"},
				}, configFlags...),
				Action: ServeAction,
			},
		},
	}
}
