// Command prismc assembles Prism source into Newton's packed 16-bit
// instruction stream.
package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"

	"github.com/prismvm/newton/internal/prism"
)

func run(inputPath, outputPath string, printSymbols bool) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	bin, instrs, err := prism.Assemble(string(raw))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, bin, 0644); err != nil {
		return err
	}

	if printSymbols {
		for i, instr := range instrs {
			fmt.Printf("%04d  %-9s option=0x%02x value=0x%02x\n", i, instr.Opcode, instr.Option, instr.Value)
		}
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "prismc"
	app.Usage = "assemble Prism source into a Newton instruction stream"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Usage:    "path to Prism source",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "path to write the packed binary",
			Value: "out.bin",
		},
		&cli.BoolFlag{
			Name:  "symbols",
			Usage: "dump parsed instructions to stdout",
		},
	}
	app.Action = func(c *cli.Context) error {
		if err := run(c.String("input"), c.String("output"), c.Bool("symbols")); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
