package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/luxfi/safehash/pkg/encoding"
	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/types"
	"github.com/luxfi/safehash/pkg/utils"
	"github.com/luxfi/safehash/pkg/verify"
)

func resolveFormat(format string) (string, error) {
	switch format {
	case "", "auto":
		if utils.IsTerminal(os.Stdout) {
			return "text", nil
		}
		return "json", nil
	case "text", "json", "cbor":
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func writeReport(w io.Writer, format string, opts safe.Options, report *verify.Report) error {
	format, err := resolveFormat(format)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "cbor":
		b, err := encoding.StructToCborBytes(report)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return writeText(w, opts, report)
}

func writeText(w io.Writer, opts safe.Options, report *verify.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(label, value string) { fmt.Fprintf(tw, "  %s:\t%s\n", label, value) }

	network, _ := types.LookupNetwork(opts.Network)
	fmt.Fprintln(tw, "Safe")
	line("Network", fmt.Sprintf("%s (chain ID %d)", network.Code, network.ChainID))
	line("Address", opts.Address)
	line("Version", safe.CleanVersion(orDefault(opts.Version, safe.DefaultVersion)))

	if tx := report.TransactionData; tx != nil {
		fmt.Fprintln(tw, "\nTransaction")
		line("To", tx.To)
		line("Value", tx.Value)
		line("Data", tx.Data)
		line("Operation", fmt.Sprintf("%d (%s)", tx.Operation, tx.Operation))
		line("Safe tx gas", tx.SafeTxGas)
		line("Base gas", tx.BaseGas)
		line("Gas price", tx.GasPrice)
		line("Gas token", tx.GasToken)
		line("Refund receiver", tx.RefundReceiver)
		line("Nonce", fmt.Sprint(tx.Nonce))
	} else {
		fmt.Fprintln(tw, "\nMessage")
		for _, l := range strings.Split(opts.MessageContent, "\n") {
			fmt.Fprintf(tw, "  %s\n", l)
		}
	}

	if nt := report.NativeTransfer; nt != nil {
		fmt.Fprintln(tw, "\nNative transfer")
		line("To", nt.To)
		line("Amount", nt.Amount)
	}
	if call := report.Decoded; call != nil {
		fmt.Fprintln(tw, "\nDecoded call")
		line("Function", call.Signature)
		if report.ABISource != "" && !strings.EqualFold(report.ABISource, report.TransactionData.To) {
			line("ABI from", report.ABISource+" (proxy implementation)")
		}
		for _, p := range call.Params {
			line(fmt.Sprintf("%s (%s)", p.Name, p.Type), p.Value)
		}
	}

	fmt.Fprintln(tw, "\nHashes")
	line("Domain hash", report.DomainHash.Hex())
	line("Message hash", report.MessageHash.Hex())
	line("Safe transaction hash", report.SafeTxHash.Hex())

	if nested := report.NestedSafe; nested != nil {
		fmt.Fprintf(tw, "\nNested Safe %s\n", opts.NestedSafeAddress)
		line("Domain hash", nested.DomainHash.Hex())
		line("Message hash", nested.MessageHash.Hex())
		line("Safe transaction hash", nested.SafeTxHash.Hex())
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(tw, "\nWarnings")
		for _, warning := range report.Warnings {
			fmt.Fprintf(tw, "  ! %s\n", warning)
		}
	}
	return tw.Flush()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
