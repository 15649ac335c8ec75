// Command memekey manages the encrypted wallet key files that the bot's evm
// venue signs with. It generates fresh keys, encrypts existing ones, and
// inspects key files without printing the private key unless explicitly asked.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noor961/Meme-coin--7/internal/crypto"
)

// passwordEnv holds the keyfile password. It is the same variable the bot
// reads for wallet.key_password.
const passwordEnv = "MEMEBOT_WALLET_KEY_PASSWORD"

var passwordFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "memekey",
		Short: "Manage encrypted wallet key files for memebot",
		Long: `memekey creates and inspects the bot's encrypted wallet key files.
Key files are AES-256-GCM encrypted JSON with a PBKDF2-derived key; the
password comes from ` + passwordEnv + ` or --password-file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&passwordFile, "password-file", "", "read the keyfile password from this file instead of the environment")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newGenerateCmd creates the generate command: mint a fresh key and write it
// encrypted. The plaintext key is never printed.
func newGenerateCmd() *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a fresh private key and write it encrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword()
			if err != nil {
				return err
			}
			keyHex, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			if err := writeKeyFile(out, keyHex, password, force); err != nil {
				return err
			}
			addr, err := deriveAddress(keyHex)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\naddress: %s\n", out, addr)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "wallet.json", "output key file path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}

// newEncryptCmd creates the encrypt command: wrap an existing plaintext key.
func newEncryptCmd() *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt <keyfile>",
		Short: "Encrypt an existing hex private key (use - to read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword()
			if err != nil {
				return err
			}
			keyHex, err := readKeyHex(args[0])
			if err != nil {
				return err
			}
			if err := writeKeyFile(out, keyHex, password, force); err != nil {
				return err
			}
			addr, err := deriveAddress(keyHex)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\naddress: %s\n", out, addr)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "wallet.json", "output key file path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing key file")
	return cmd
}

// newInspectCmd creates the inspect command: decrypt a key file and show the
// address it signs as. --reveal additionally prints the private key.
func newInspectCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "inspect <keyfile>",
		Short: "Decrypt a key file and print its address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := resolvePassword()
			if err != nil {
				return err
			}
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading key file: %w", err)
			}
			keyHex, err := crypto.DecryptKey(blob, password)
			if err != nil {
				return err
			}
			addr, err := deriveAddress(keyHex)
			if err != nil {
				return err
			}
			fmt.Printf("address: %s\n", addr)
			if reveal {
				fmt.Printf("private key: %s\n", keyHex)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the decrypted private key")
	return cmd
}

// resolvePassword returns the keyfile password from --password-file or the
// environment.
func resolvePassword() (string, error) {
	if passwordFile != "" {
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("reading password file: %w", err)
		}
		pw := strings.TrimSpace(string(data))
		if pw == "" {
			return "", fmt.Errorf("password file %s is empty", passwordFile)
		}
		return pw, nil
	}
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("no password: set %s or pass --password-file", passwordEnv)
}

// readKeyHex reads a hex private key from the given file, or stdin when the
// path is "-".
func readKeyHex(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading key: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", errors.New("empty key input")
	}
	return key, nil
}

// writeKeyFile encrypts keyHex and writes it to path with owner-only
// permissions. Existing files are never overwritten without force.
func writeKeyFile(path, keyHex, password string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	blob, err := crypto.EncryptKey(keyHex, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}

// deriveAddress returns the EVM address a key signs as. The address does not
// depend on the chain, so a fixed chain ID is fine here.
func deriveAddress(keyHex string) (string, error) {
	w, err := crypto.NewWallet(keyHex, 1)
	if err != nil {
		return "", err
	}
	return w.Address().Hex(), nil
}
