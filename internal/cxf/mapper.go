package cxf

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"

	"github.com/nvinuesa/go-cxf"
	"golang.org/x/crypto/ssh"

	"github.com/nvinuesa/bw2kp/internal/model"
	"github.com/nvinuesa/bw2kp/internal/vault"
)

// defaultSSHKeyType is used when the private key cannot be parsed,
// e.g. because it is passphrase protected.
const defaultSSHKeyType = "ssh-ed25519"

// mapPlacementToItem converts a placed entry to a cxf.Item.
func mapPlacementToItem(p *model.Placement, id string) (cxf.Item, error) {
	e := &p.Entry

	var scope *cxf.CredentialScope
	if e.URLString() != "" {
		scope = &cxf.CredentialScope{
			Urls:        []string{e.URLString()},
			AndroidApps: []cxf.AndroidAppIdCredential{},
		}
	}

	credentials, err := mapCredentials(p)
	if err != nil {
		return cxf.Item{}, err
	}

	var tags []string
	if p.Kind != "" {
		tags = []string{p.Kind}
	}

	return cxf.Item{
		ID:          id,
		Title:       e.Title,
		Scope:       scope,
		Credentials: credentials,
		Tags:        tags,
	}, nil
}

// mapCredentials creates the credentials array for an item.
func mapCredentials(p *model.Placement) ([]json.RawMessage, error) {
	e := &p.Entry
	var credentials []json.RawMessage

	add := func(cred any) error {
		raw, err := marshalCredential(cred)
		if err != nil {
			return err
		}
		credentials = append(credentials, raw)
		return nil
	}

	switch p.Kind {
	case vault.KindLogin.String():
		if err := add(mapBasicAuth(e)); err != nil {
			return nil, err
		}
		if totp := mapTOTP(e); totp != nil {
			if err := add(totp); err != nil {
				return nil, err
			}
		}

	case vault.KindCard.String():
		if err := add(mapCreditCard(e)); err != nil {
			return nil, err
		}

	case vault.KindSSHKey.String():
		if e.Secret != "" {
			if err := add(mapSSHKey(e)); err != nil {
				return nil, err
			}
		}

	case vault.KindSecureNote.String(), vault.KindIdentity.String():
		// Carried entirely by the notes below.

	default:
		if err := add(mapBasicAuth(e)); err != nil {
			return nil, err
		}
	}

	if e.Notes != "" {
		if err := add(cxf.NoteCredential{
			Type:    cxf.CredentialTypeNote,
			Content: makeEditableField(cxf.FieldTypeString, e.Notes),
		}); err != nil {
			return nil, err
		}
	}

	return credentials, nil
}

// mapBasicAuth creates a BasicAuthCredential from an entry.
func mapBasicAuth(e *model.Entry) cxf.BasicAuthCredential {
	return cxf.BasicAuthCredential{
		Type:     cxf.CredentialTypeBasicAuth,
		Username: makeEditableField(cxf.FieldTypeString, e.Username),
		Password: makeEditableField(cxf.FieldTypeConcealedString, e.Secret),
	}
}

// mapTOTP creates a TOTPCredential, or nil if the entry has no usable seed.
func mapTOTP(e *model.Entry) *cxf.TOTPCredential {
	totp := model.ParseTOTP(e.TOTP)
	if totp == nil || totp.Validate() != nil {
		return nil
	}

	var algorithm string
	switch totp.Algorithm {
	case model.TOTPAlgorithmSHA256:
		algorithm = cxf.OTPHashAlgorithmSha256
	case model.TOTPAlgorithmSHA512:
		algorithm = cxf.OTPHashAlgorithmSha512
	default:
		algorithm = cxf.OTPHashAlgorithmSha1
	}

	period := totp.Period
	if period == 0 {
		period = 30
	}
	digits := totp.Digits
	if digits == 0 {
		digits = 6
	}

	username := totp.AccountName
	if username == "" {
		username = e.Username
	}

	return &cxf.TOTPCredential{
		Type:      cxf.CredentialTypeTOTP,
		Secret:    totp.Secret,
		Period:    uint8(period),
		Digits:    uint8(digits),
		Username:  username,
		Algorithm: algorithm,
		Issuer:    totp.Issuer,
	}
}

// mapCreditCard creates a CreditCardCredential. The remaining card fields
// travel in the notes credential.
func mapCreditCard(e *model.Entry) cxf.CreditCardCredential {
	return cxf.CreditCardCredential{
		Type:     cxf.CredentialTypeCreditCard,
		Number:   makeEditableField(cxf.FieldTypeConcealedString, e.Secret),
		CardType: makeEditableField(cxf.FieldTypeString, e.Username),
	}
}

// mapSSHKey creates an SSHKeyCredential. Parsable keys are re-encoded as
// PKCS#8 DER; others are carried as their PEM text.
func mapSSHKey(e *model.Entry) cxf.SSHKeyCredential {
	keyType, der := parsePrivateKey(e.Secret)

	var privateKey string
	if der != nil {
		privateKey = base64.RawURLEncoding.EncodeToString(der)
	} else {
		privateKey = base64.RawURLEncoding.EncodeToString([]byte(e.Secret))
	}

	return cxf.SSHKeyCredential{
		Type:       cxf.CredentialTypeSSHKey,
		KeyType:    keyType,
		PrivateKey: privateKey,
	}
}

// parsePrivateKey returns the SSH key type and its PKCS#8 encoding. der is
// nil when the key cannot be parsed.
func parsePrivateKey(pemText string) (keyType string, der []byte) {
	raw, err := ssh.ParseRawPrivateKey([]byte(pemText))
	if err != nil {
		return defaultSSHKeyType, nil
	}

	// x509 wants the ed25519 value, ssh returns a pointer.
	if k, ok := raw.(*ed25519.PrivateKey); ok {
		raw = *k
	}

	keyType = defaultSSHKeyType
	if signer, err := ssh.NewSignerFromKey(raw); err == nil {
		keyType = signer.PublicKey().Type()
	}

	der, err = x509.MarshalPKCS8PrivateKey(raw)
	if err != nil {
		return keyType, nil
	}
	return keyType, der
}

// makeEditableField creates an EditableField with the given type and value.
func makeEditableField(fieldType, value string) *cxf.EditableField {
	if value == "" {
		return nil
	}

	marshalledValue, _ := json.Marshal(value)
	return &cxf.EditableField{
		FieldType: fieldType,
		Value:     marshalledValue,
	}
}

// marshalCredential marshals a credential to json.RawMessage.
func marshalCredential(cred any) (json.RawMessage, error) {
	return json.Marshal(cred)
}

// isBase64URL checks if a string is valid base64url encoding.
func isBase64URL(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}
