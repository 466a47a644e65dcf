package registry

import (
	"context"
	"net/http"
	"net/url"
)

// Signature is a detached signature over a binary's content hash.
// Uniqueness is (binary, signing key id).
type Signature struct {
	PRN           string `json:"prn,omitempty"`
	BinaryPRN     string `json:"binary_prn,omitempty"`
	SigningKeyPRN string `json:"signing_key_prn,omitempty"`
	KeyID         string `json:"keyid"`
	Signature     string `json:"signature"` // hex-encoded
}

// CreateSignatureParams are the parameters for CreateSignature. Exactly
// one of SigningKeyPRN or SigningKeyKeyID identifies the verifying key.
type CreateSignatureParams struct {
	BinaryPRN       string `json:"binary_prn"`
	Signature       string `json:"signature"`
	SigningKeyPRN   string `json:"signing_key_prn,omitempty"`
	SigningKeyKeyID string `json:"signing_key_keyid,omitempty"`
}

type signatureEnvelope struct {
	Signature Signature `json:"binary_signature"`
}

type signatureListEnvelope struct {
	Signatures []Signature `json:"binary_signatures"`
	NextPage   string      `json:"next_page,omitempty"`
}

// CreateSignature attaches a signature to a binary.
func (c *Client) CreateSignature(ctx context.Context, params CreateSignatureParams) (*Signature, error) {
	var env signatureEnvelope
	if err := c.do(ctx, http.MethodPost, "/binary_signatures", nil, params, &env); err != nil {
		return nil, err
	}
	return &env.Signature, nil
}

// ListSignatures lists the signatures attached to a binary.
func (c *Client) ListSignatures(ctx context.Context, binaryPRN string) ([]Signature, error) {
	var env signatureListEnvelope
	path := "/binaries/" + url.PathEscape(binaryPRN) + "/signatures"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Signatures, nil
}

// DeleteSignature removes a signature by PRN.
func (c *Client) DeleteSignature(ctx context.Context, signaturePRN string) error {
	return c.do(ctx, http.MethodDelete, "/binary_signatures/"+url.PathEscape(signaturePRN), nil, nil, nil)
}
