package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LeventeLantos/payment-verification/internal/smsparse"
	"github.com/LeventeLantos/payment-verification/internal/verify"
)

func parseCmd() *cobra.Command {
	var (
		amount       string
		counterparty string
	)

	cmd := &cobra.Command{
		Use:   "parse [sms]",
		Short: "Print the fields extracted from an SMS and, with expectations, its verdict",
		Example: `  verifier parse "Sent Rs.2500 from Kotak Bank AC X6878 to sagarmanthan0001-1@oksbi on 17-08-25.UPI Ref 559526315119."
  verifier parse "<sms>" --amount 2500 --counterparty sagarmanthan0001-1@oksbi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.OutOrStdout(), args[0], amount, counterparty)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "expected amount in rupees")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "expected counterparty (UPI) id")

	return cmd
}

type parseOutput struct {
	Parsed  smsparse.Message `json:"parsed"`
	Verdict *verify.Verdict  `json:"verdict,omitempty"`
}

func runParse(w io.Writer, text, amount, counterparty string) error {
	out := parseOutput{Parsed: smsparse.Parse(text)}

	if amount != "" || counterparty != "" {
		if amount == "" || counterparty == "" {
			return fmt.Errorf("--amount and --counterparty must be given together")
		}
		expected, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", amount, err)
		}
		v := verify.Validate(out.Parsed, expected, counterparty)
		out.Verdict = &v
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
