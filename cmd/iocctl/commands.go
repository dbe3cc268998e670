package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v2"

	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/properties"
)

func runInit(c *cli.Context) error {
	written, err := ioc.GenerateTemplates(c.String(argDir))
	if err != nil {
		return err
	}

	if len(written) == 0 {
		fmt.Fprintln(c.App.Writer, "templates already exist")
		return nil
	}
	for _, path := range written {
		fmt.Fprintln(c.App.Writer, "created", path)
	}
	return nil
}

func runCheck(c *cli.Context) error {
	path := c.String(argFile)
	if path == "" {
		return errors.Errorf("--%s is required", argFile)
	}

	doc, err := properties.Parse(path)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var total uint64
	for _, k := range keys {
		data, err := json.Marshal(doc[k])
		if err != nil {
			return errors.Wrapf(err, "could not encode key %s", k)
		}
		total += uint64(len(data))
		fmt.Fprintf(c.App.Writer, "%-24s %10s\n", k, humanize.Bytes(uint64(len(data))))
	}

	fmt.Fprintf(c.App.Writer, "%s keys, %s\n", humanize.Comma(int64(len(keys))), humanize.Bytes(total))
	return nil
}

func runConfig(c *cli.Context) error {
	cfg, err := ioc.LoadConfig(c.String(argConfigFile), c.String(argEnvFile))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
