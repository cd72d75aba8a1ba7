package cmd

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	address := database.PublicKeyToAddress(privateKey.PublicKey)
	fmt.Println("For Address:", address)

	var bal balance
	resp, err := newClient().R().
		SetContext(cmd.Context()).
		SetResult(&bal).
		SetPathParam("address", string(address)).
		Get("/v1/balances/{address}")
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String())
	}

	fmt.Println(bal.Balance)
	return nil
}
