package payments

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
)

// FormField est un couple nom/valeur ordonné. L'ordre des champs est
// celui documenté par Payfast (ordre des paramètres du formulaire pour
// la signature de checkout, ordre de réception pour une ITN) — jamais
// l'ordre alphabétique ni l'ordre d'insertion d'une map.
type FormField struct {
	Name  string
	Value string
}

// Sign calcule la signature Payfast d'un jeu de champs ordonné :
// les champs vides et le champ "signature" sont ignorés, chaque valeur
// est URL-encodée (espaces en '+'), les paires sont jointes par '&',
// la passphrase est ajoutée si non vide, puis MD5 hexadécimal.
// MD5 est imposé par le protocole du fournisseur, ce n'est pas un choix.
func Sign(fields []FormField, passphrase string) string {
	var b strings.Builder
	for _, f := range fields {
		if f.Name == "signature" || f.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(pfEncode(f.Value))
	}
	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(pfEncode(passphrase))
	}

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Verify recontrôle la signature fournie contre les champs reçus.
// Renvoie false (jamais de panique) si la signature manque, si la liste
// de champs est vide ou si les digests diffèrent. Comparaison en temps
// constant.
func Verify(fields []FormField, signature, passphrase string) bool {
	if signature == "" || len(fields) == 0 {
		return false
	}
	expected := Sign(fields, passphrase)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) == 1
}

// pfEncode encode une valeur comme le fait Payfast : urlencode PHP,
// espaces en '+', hexadécimal en majuscules.
func pfEncode(v string) string {
	return url.QueryEscape(v)
}
