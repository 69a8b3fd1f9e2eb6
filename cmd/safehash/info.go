package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/types"
)

func networksCommand() *cli.Command {
	return &cli.Command{
		Name:  "networks",
		Usage: "List supported networks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "auto"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			format, err := resolveFormat(c.String("output"))
			if err != nil {
				return err
			}
			networks := types.SupportedNetworks()
			if format != "text" {
				return json.NewEncoder(os.Stdout).Encode(networks)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NETWORK\tCHAIN ID\tPREFIX\tABI LOOKUP")
			for _, n := range networks {
				abi := "no"
				if n.ExplorerAPIHost != "" {
					abi = "yes"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", n.Code, n.ChainID, n.ShortName, abi)
			}
			return tw.Flush()
		},
	}
}

func versionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "versions",
		Usage: "List known Safe contract versions",
		Action: func(ctx context.Context, c *cli.Command) error {
			for _, v := range safe.SupportedVersions {
				marker := ""
				if v == safe.DefaultVersion {
					marker = " (default)"
				}
				domain := "chainId + verifyingContract"
				if safe.DomainTypehash(v) != safe.DomainTypehash(safe.DefaultVersion) {
					domain = "verifyingContract only"
				}
				fmt.Printf("%s%s\tdomain: %s\n", v, marker, domain)
			}
			return nil
		},
	}
}
