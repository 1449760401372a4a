package model

// SealedFile represents an encrypted state file
type SealedFile struct {
	Version    int    `json:"version"`
	ScryptN    int    `json:"scryptN"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}
