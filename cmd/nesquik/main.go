package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/V0idExp/nesquik"
	"github.com/V0idExp/nesquik/parser"
	cli "github.com/urfave/cli/v2"
)

// parseOrg accepts both decimal ("1536") and hex ("$0600" or "0x0600")
// address literals, the same two notations source programs themselves use
// for immediates.
func parseOrg(s string) (uint16, error) {
	if len(s) > 0 && s[0] == '$' {
		n, err := strconv.ParseUint(s[1:], 16, 16)
		return uint16(n), err
	}
	n, err := strconv.ParseUint(s, 0, 16)
	return uint16(n), err
}

func compileFile(file string, org uint16, dumpAST bool) (*nesquik.Program, error) {
	src, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	root, err := parser.Parse(string(src))
	if err != nil {
		return nil, err
	}

	if dumpAST {
		fmt.Fprintln(os.Stderr, root.Dump())
	}

	return nesquik.Compile(root, org)
}

func main() {
	app := cli.NewApp()
	app.Name = "nesquik"
	app.Usage = "Compile NESQuik source into a 6502 program image"
	app.Commands = []*cli.Command{
		{
			Name:      "build",
			Aliases:   []string{"b"},
			Usage:     "Compile a source file to a binary image",
			ArgsUsage: "source.nq",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "org",
					Value: "$0600",
					Usage: "load address the program is assembled to run at",
				},
				&cli.StringFlag{
					Name:  "out",
					Value: "",
					Usage: "output file for the assembled image (defaults to source name with .bin)",
				},
				&cli.BoolFlag{
					Name:  "asm",
					Usage: "print the generated assembly listing to stderr",
				},
				&cli.BoolFlag{
					Name:  "dump-ast",
					Usage: "print the parsed syntax tree to stderr before compiling",
				},
			},
			Action: func(c *cli.Context) error {
				args := c.Args()
				if args.Len() < 1 {
					return cli.Exit("no source file given", 1)
				}
				file := args.First()

				org, err := parseOrg(c.String("org"))
				if err != nil {
					return cli.Exit(fmt.Sprintf("invalid --org value: %v", err), 1)
				}

				prog, err := compileFile(file, org, c.Bool("dump-ast"))
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}

				if c.Bool("asm") {
					prog.WriteListing(os.Stderr)
				}

				out := c.String("out")
				if out == "" {
					out = file + ".bin"
				}
				if err := ioutil.WriteFile(out, prog.Obj, 0644); err != nil {
					return cli.Exit(err.Error(), 1)
				}

				fmt.Printf("%s -> %s (%d bytes, org $%04X)\n", file, out, len(prog.Obj), org)
				return nil
			},
		},
	}
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
