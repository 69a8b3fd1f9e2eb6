package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/types"
)

func safeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "network",
			Aliases: []string{"n"},
			Usage:   "Network code, see `safehash networks`",
		},
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "Safe address",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "Safe app URL (https://app.safe.global/...?safe=sep:0x...) instead of --network/--address",
		},
		&cli.StringFlag{
			Name:  "safe-version",
			Usage: "Safe contract version",
			Value: safe.DefaultVersion,
		},
		&cli.StringFlag{
			Name:  "nested-safe-address",
			Usage: "Address of a Safe that owns this Safe",
		},
		&cli.StringFlag{
			Name:  "nested-safe-version",
			Usage: "Contract version of the nested Safe",
			Value: safe.DefaultVersion,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: auto, text, json or cbor",
			Value:   "auto",
		},
	}
}

func txCommand() *cli.Command {
	flags := append(safeFlags(),
		&cli.StringFlag{Name: "nonce", Usage: "Transaction nonce"},
		&cli.StringFlag{Name: "nested-safe-nonce", Usage: "Nonce of the nested Safe's approveHash transaction"},
		&cli.StringFlag{Name: "to", Usage: "Target address; supplying it skips the Transaction Service lookup"},
		&cli.StringFlag{Name: "value", Usage: "Value in wei", Value: "0"},
		&cli.StringFlag{Name: "data", Usage: "Calldata (0x-hex)", Value: "0x"},
		&cli.StringFlag{Name: "operation", Usage: "0 (Call) or 1 (DelegateCall)", Value: "0"},
		&cli.StringFlag{Name: "safe-tx-gas", Value: "0"},
		&cli.StringFlag{Name: "base-gas", Value: "0"},
		&cli.StringFlag{Name: "gas-price", Value: "0"},
		&cli.StringFlag{Name: "gas-token", Value: safe.ZeroAddress},
		&cli.StringFlag{Name: "refund-receiver", Value: safe.ZeroAddress},
		&cli.BoolFlag{Name: "offline", Usage: "Never contact the Transaction Service or block explorers"},
		&cli.BoolFlag{Name: "no-decode", Usage: "Skip calldata decoding"},
	)
	return &cli.Command{
		Name:  "tx",
		Usage: "Compute the hashes of a Safe multisig transaction",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := baseOptions(c)
			if err != nil {
				return err
			}
			if opts.Nonce, err = optionalUint(c, "nonce"); err != nil {
				return err
			}
			if opts.NestedSafeNonce, err = optionalUint(c, "nested-safe-nonce"); err != nil {
				return err
			}
			if c.IsSet("to") {
				tx, err := transactionFromFlags(c, opts.Nonce)
				if err != nil {
					return err
				}
				opts.TransactionData = tx
			}
			return runHash(ctx, c, opts, depsOptions{
				offline: c.Bool("offline"),
				decode:  !c.Bool("no-decode"),
			})
		},
	}
}

func messageCommand() *cli.Command {
	flags := append(safeFlags(),
		&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Message text"},
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read the message from a file"},
	)
	return &cli.Command{
		Name:  "message",
		Usage: "Compute the hashes of an off-chain Safe message",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := baseOptions(c)
			if err != nil {
				return err
			}
			switch {
			case c.IsSet("file"):
				b, err := os.ReadFile(c.String("file"))
				if err != nil {
					return fmt.Errorf("read message: %w", err)
				}
				opts.MessageContent = string(b)
			case c.IsSet("message"):
				opts.MessageContent = c.String("message")
			default:
				return fmt.Errorf("one of --message or --file is required")
			}
			if opts.MessageContent == "" {
				return fmt.Errorf("message is empty")
			}
			return runHash(ctx, c, opts, depsOptions{offline: true})
		},
	}
}

func baseOptions(c *cli.Command) (safe.Options, error) {
	opts := safe.Options{
		Network:           c.String("network"),
		Address:           c.String("address"),
		Version:           c.String("safe-version"),
		NestedSafeAddress: c.String("nested-safe-address"),
		NestedSafeVersion: c.String("nested-safe-version"),
	}
	if c.IsSet("url") {
		ref, err := types.ParseSafeURL(c.String("url"))
		if err != nil {
			return opts, err
		}
		opts.Address = ref.Address
		if ref.Network != "" && opts.Network == "" {
			opts.Network = string(ref.Network)
		}
	}
	return opts, nil
}

func optionalUint(c *cli.Command, name string) (*uint64, error) {
	if !c.IsSet(name) {
		return nil, nil
	}
	n, err := strconv.ParseUint(c.String(name), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &n, nil
}

func transactionFromFlags(c *cli.Command, nonce *uint64) (*safe.SafeTransaction, error) {
	if nonce == nil {
		return nil, fmt.Errorf("--nonce is required with --to")
	}
	op, err := strconv.ParseUint(c.String("operation"), 10, 8)
	if err != nil {
		return nil, fmt.Errorf("--operation: %w", err)
	}
	return &safe.SafeTransaction{
		To:             c.String("to"),
		Value:          c.String("value"),
		Data:           c.String("data"),
		Operation:      safe.Operation(op),
		SafeTxGas:      c.String("safe-tx-gas"),
		BaseGas:        c.String("base-gas"),
		GasPrice:       c.String("gas-price"),
		GasToken:       c.String("gas-token"),
		RefundReceiver: c.String("refund-receiver"),
		Nonce:          *nonce,
	}, nil
}

func runHash(ctx context.Context, c *cli.Command, opts safe.Options, o depsOptions) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	o.publish = true
	d, err := buildDeps(cfg, o)
	if err != nil {
		return err
	}
	defer d.Close()

	report, err := d.service.Verify(ctx, opts)
	if err != nil {
		return err
	}
	return writeReport(os.Stdout, c.String("output"), opts, report)
}
