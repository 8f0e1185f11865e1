package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutFields() []FormField {
	return []FormField{
		{Name: "merchant_id", Value: "10000100"},
		{Name: "merchant_key", Value: "46f0cd694581a"},
		{Name: "return_url", Value: "https://shop.example/return"},
		{Name: "notify_url", Value: "https://shop.example/notify"},
		{Name: "name_first", Value: "Koos"},
		{Name: "email_address", Value: "koos@example.co.za"},
		{Name: "m_payment_id", Value: "42"},
		{Name: "amount", Value: "1999.00"},
		{Name: "item_name", Value: "Commande KoosDoos #42"},
	}
}

func TestSignThenVerify(t *testing.T) {
	fields := checkoutFields()
	sig := Sign(fields, "jt7NOE43FZPn")

	require.Len(t, sig, 32, "digest MD5 hexadécimal attendu")
	assert.True(t, Verify(fields, sig, "jt7NOE43FZPn"))
}

func TestVerifyDetectsMutatedField(t *testing.T) {
	fields := checkoutFields()
	sig := Sign(fields, "jt7NOE43FZPn")

	// Chaque champ muté individuellement doit invalider la signature.
	for i := range fields {
		mutated := make([]FormField, len(fields))
		copy(mutated, fields)
		mutated[i].Value = mutated[i].Value + "x"
		assert.False(t, Verify(mutated, sig, "jt7NOE43FZPn"),
			"mutation de %s non détectée", fields[i].Name)
	}
}

func TestVerifyRejectsWrongPassphrase(t *testing.T) {
	fields := checkoutFields()
	sig := Sign(fields, "bonne-passphrase")
	assert.False(t, Verify(fields, sig, "mauvaise-passphrase"))
}

func TestSignWithoutPassphrase(t *testing.T) {
	fields := checkoutFields()
	withPass := Sign(fields, "secret")
	withoutPass := Sign(fields, "")
	assert.NotEqual(t, withPass, withoutPass, "la passphrase doit participer au digest")
	assert.True(t, Verify(fields, withoutPass, ""))
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	assert.False(t, Verify(checkoutFields(), "", "secret"))
}

func TestVerifyRejectsEmptyFields(t *testing.T) {
	assert.False(t, Verify(nil, "d41d8cd98f00b204e9800998ecf8427e", "secret"))
}

func TestSignSkipsSignatureFieldAndEmptyValues(t *testing.T) {
	base := checkoutFields()

	// Un champ vide et le champ signature lui-même ne participent pas.
	padded := append([]FormField{}, base...)
	padded = append(padded, FormField{Name: "cell_number", Value: ""})
	padded = append(padded, FormField{Name: "signature", Value: "deadbeef"})

	assert.Equal(t, Sign(base, "p"), Sign(padded, "p"))
}

func TestSignEncodesValues(t *testing.T) {
	a := Sign([]FormField{{Name: "item_name", Value: "Feu & Braai"}}, "")
	b := Sign([]FormField{{Name: "item_name", Value: "Feu %26 Braai"}}, "")
	assert.NotEqual(t, a, b, "l'encodage URL doit distinguer valeur brute et encodée")
}
