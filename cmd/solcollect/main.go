// Command solcollect combines solution containers: it unions the grids of
// one or more input files, table by table, into a single output container.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/radioastro/solparm/solparm"
)

func main() {
	log := logrus.New()

	app := &cli.App{
		Name:      "solcollect",
		Usage:     "combine solution containers into one",
		ArgsUsage: "FILE [FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "insolset",
				Aliases: []string{"s"},
				Value:   "sol000",
				Usage:   "input solution-set name",
			},
			&cli.StringFlag{
				Name:    "outsolset",
				Aliases: []string{"u"},
				Value:   "sol000",
				Usage:   "output solution-set name",
			},
			&cli.StringFlag{
				Name:    "insoltab",
				Aliases: []string{"t"},
				Usage:   "input solution-table name (default: all tables of the first input)",
			},
			&cli.StringFlag{
				Name:    "outfile",
				Aliases: []string{"o"},
				Value:   "output.spc",
				Usage:   "output container path",
			},
			&cli.BoolFlag{
				Name:    "clobber",
				Aliases: []string{"c"},
				Usage:   "replace an existing output file instead of appending to it",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				log.SetLevel(logrus.DebugLevel)
			}
			files := c.Args().Slice()
			if len(files) == 0 {
				cli.ShowAppHelp(c)
				return cli.Exit("no input files given", 1)
			}
			// A single comma-separated argument is treated as a file list.
			if len(files) == 1 && strings.Contains(files[0], ",") {
				files = splitFileList(files[0])
			}
			return collect(log, files, c.String("insolset"), c.String("outsolset"),
				c.String("insoltab"), c.String("outfile"), c.Bool("clobber"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func splitFileList(arg string) []string {
	arg = strings.Trim(arg, "[]")
	parts := strings.Split(arg, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collect(log *logrus.Logger, files []string, insolset, outsolset, insoltab, outfile string, clobber bool) (err error) {
	// Open all inputs read-only.
	inputs := make([]*solparm.Parm, 0, len(files))
	defer func() {
		for _, in := range inputs {
			if cerr := in.Close(); cerr != nil {
				err = multierror.Append(err, cerr)
			}
		}
	}()
	inSets := make([]*solparm.Solset, 0, len(files))
	for _, file := range files {
		in, err := solparm.Open(file, solparm.WithLogger(log))
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
		set, err := in.GetSolset(insolset)
		if err != nil {
			return err
		}
		inSets = append(inSets, set)
	}

	// With no explicit table, process every table of the first input.
	soltabs := []string{insoltab}
	if insoltab == "" {
		soltabs = inSets[0].SoltabNames()
		if len(soltabs) == 0 {
			return fmt.Errorf("no solution-tables found in %s/%s", files[0], insolset)
		}
	}

	if clobber {
		if rerr := os.Remove(outfile); rerr != nil && !os.IsNotExist(rerr) {
			return rerr
		}
	}
	out, err := solparm.OpenReadWrite(outfile, solparm.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	outSet, err := out.GetSolset(outsolset)
	if err != nil {
		if outSet, err = out.MakeSolset(outsolset); err != nil {
			return err
		}
	}

	for _, name := range soltabs {
		log.Infof("merging solution-table %s", name)
		if _, err := solparm.Collect(inSets, name, outSet); err != nil {
			return err
		}
	}

	summary, err := out.Describe()
	if err != nil {
		return err
	}
	log.Info(summary)
	return nil
}
