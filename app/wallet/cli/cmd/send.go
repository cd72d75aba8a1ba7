package cmd

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transaction and submit it to the node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	recipient, err := database.ToAddress(to)
	if err != nil {
		return err
	}

	client := newClient()

	// The balance is derived from the node's chain, so both the chain and
	// the starting balance are needed to sign against the right amount.
	var gen genesis.Genesis
	resp, err := client.R().SetContext(cmd.Context()).SetResult(&gen).Get("/v1/genesis")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("genesis: status %d: %s", resp.StatusCode(), resp.String())
	}

	var chain database.Chain
	resp, err = client.R().SetContext(cmd.Context()).SetResult(&chain).Get("/v1/blockchain")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("blockchain: status %d: %s", resp.StatusCode(), resp.String())
	}

	wallet := database.NewWallet(privateKey, chain, gen.StartingBalance)

	tx, err := database.NewTx(wallet, recipient, amount)
	if err != nil {
		return err
	}

	resp, err = client.R().SetContext(cmd.Context()).SetBody(tx).Post("/v1/tx/submit")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("submit: status %d: %s", resp.StatusCode(), resp.String())
	}

	fmt.Println(tx.ID)
	return nil
}
