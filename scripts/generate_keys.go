package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	_outputDir string
	_keysFile  = "keys.json"
)

// Generates a member signing key. The private key goes into ledger.keys
// of memberclient.yaml, the address is what the fund contract registers.
func main() {
	_parseInputParams()
	_mustMakeDir(_outputDir)

	key, err := crypto.GenerateKey()
	_check("Failed to generate private key:", err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	result, err := json.MarshalIndent(map[string]interface{}{
		"address":     address,
		"private_key": hexutil.Encode(crypto.FromECDSA(key)),
	}, "", "    ")
	_check("Failed to serialize keys:", err)

	keysPath := filepath.Join(_outputDir, _keysFile)
	err = ioutil.WriteFile(keysPath, result, 0600)
	_check("Failed to write keys file:", err)
	fmt.Printf("Generated key for %s in %s\n", address, keysPath)
}

func _parseInputParams() {
	var rootCmd = &cobra.Command{}

	rootCmd.Flags().StringVarP(
		&_outputDir, "output", "o", _baseDir(), "output directory")

	err := rootCmd.Execute()
	_check("Wrong input params:", err)
}

func _baseDir() string {
	return filepath.Join(".artifacts", "keys")
}

func _mustMakeDir(dir string) {
	err := os.MkdirAll(dir, 0700)
	_check("failed to create directory "+dir, err)
}

func _check(msg string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, msg, err)
	os.Exit(1)
}
