// reddgate-keys genera el material de firma del servicio.
//
//	reddgate-keys generate --out keys/reddgate.key [--seal-key <b64>]
//	reddgate-keys gen-sealkey
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	jwtx "github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/security/secretbox"
)

func main() {
	root := &cobra.Command{
		Use:           "reddgate-keys",
		Short:         "Genera y sella las claves de firma de tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		outPath string
		sealKey string
		force   bool
	)
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Genera un par Ed25519 nuevo y lo escribe al keyfile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(outPath); err == nil {
					return fmt.Errorf("%s ya existe (usá --force para pisarlo)", outPath)
				}
			}

			ks, err := jwtx.GenerateEd25519()
			if err != nil {
				return err
			}
			pemBytes, err := ks.MarshalPEM()
			if err != nil {
				return err
			}

			out := pemBytes
			if sealKey != "" {
				k, err := secretbox.ParseKey(sealKey)
				if err != nil {
					return err
				}
				sealed, err := secretbox.Seal(k, pemBytes)
				if err != nil {
					return err
				}
				out = []byte(sealed)
			}

			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0o700); err != nil {
					return err
				}
			}
			if err := os.WriteFile(outPath, out, 0o600); err != nil {
				return err
			}

			fmt.Printf("keyfile: %s\n", outPath)
			fmt.Printf("kid:     %s\n", ks.KID)
			fmt.Printf("jwks:    %s\n", ks.JWKSJSON())
			if sealKey == "" {
				fmt.Println("aviso: keyfile SIN sellar (PEM plano); apto solo para dev")
			}
			return nil
		},
	}
	genCmd.Flags().StringVar(&outPath, "out", "keys/reddgate.key", "ruta del keyfile a escribir")
	genCmd.Flags().StringVar(&sealKey, "seal-key", os.Getenv("REDDGATE_KEYSTORE_KEY"), "clave de 32 bytes para sellar (base64/hex)")
	genCmd.Flags().BoolVar(&force, "force", false, "pisar el keyfile si ya existe")

	sealkeyCmd := &cobra.Command{
		Use:   "gen-sealkey",
		Short: "Genera una clave de sellado nueva (32 bytes, base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			k := make([]byte, 32)
			if _, err := rand.Read(k); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(k))
			return nil
		},
	}

	root.AddCommand(genCmd, sealkeyCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
