package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hacash/node/cmd/utils"
	"github.com/hacash/node/common"
)

const statusTimeout = 5 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "prints the head and the recent blocks of a running node",
	Long: `queries the json api of a running node (--http-addr) and prints its head
and recent blocks as a table. --dump prints the raw responses instead.`,
	RunE:                       runStatus,
	SilenceUsage:               true,
	SuggestionsMinimumDistance: 2,
	Example:                    `hacash status --http-addr=127.0.0.1:8081`,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	utils.CreateAndBindFlag(utils.HTTPAddrFlag, statusCmd)
	statusCmd.Flags().Bool("dump", false, "dump the raw api responses")
}

func fetchJSON(client *http.Client, base string, path string) (map[string]interface{}, error) {
	resp, err := client.Get(base + path)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", path)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber() // heights print as integers
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if ret, _ := out["ret"].(json.Number); ret.String() != "0" {
		return nil, errors.Errorf("query %s: %v", path, out["err"])
	}
	return out, nil
}

func blockAge(v interface{}) string {
	n, ok := v.(json.Number)
	if !ok {
		return ""
	}
	sec, err := n.Int64()
	if err != nil {
		return ""
	}
	return common.PrettyAge(time.Unix(sec, 0)).String()
}

func runStatus(cmd *cobra.Command, args []string) error {
	base := viper.GetString(utils.HTTPAddrFlag.Name)
	if !strings.HasPrefix(base, "http") {
		base = "http://" + base
	}
	client := &http.Client{Timeout: statusTimeout}

	latest, err := fetchJSON(client, base, "/query/latest")
	if err != nil {
		return err
	}
	recents, err := fetchJSON(client, base, "/query/block/recents")
	if err != nil {
		return err
	}
	if dump, _ := cmd.Flags().GetBool("dump"); dump {
		spew.Fdump(os.Stdout, latest, recents)
		return nil
	}

	fmt.Printf("height %v  hash %v  txpool %v\n", latest["height"], latest["hash"], latest["txpool"])
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Height", "Hash", "Txs", "Miner", "Reward", "Message", "Age"})
	list, _ := recents["list"].([]interface{})
	for _, item := range list {
		blk, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		table.Append([]string{
			fmt.Sprint(blk["height"]),
			fmt.Sprint(blk["hash"]),
			fmt.Sprint(blk["txs"]),
			fmt.Sprint(blk["miner"]),
			fmt.Sprint(blk["reward"]),
			fmt.Sprint(blk["message"]),
			blockAge(blk["time"]),
		})
	}
	table.Render()
	return nil
}
