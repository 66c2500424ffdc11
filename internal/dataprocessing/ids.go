package dataprocessing

import (
	"strings"

	"github.com/google/uuid"

	"deliveryboard/pkg/contracts/domain"
)

var kindNamespaces = map[domain.RecordKind]uuid.UUID{
	domain.KindReservation: uuid.NewSHA1(uuid.NameSpaceURL, []byte("deliveryboard:reservation")),
	domain.KindRequisition: uuid.NewSHA1(uuid.NameSpaceURL, []byte("deliveryboard:requisition")),
}

// RecordID derives the stable identifier of a record from its identity key.
// The same key always yields the same id, across restarts and regenerations
// of the source file.
func RecordID(kind domain.RecordKind, key string) string {
	ns, ok := kindNamespaces[kind]
	if !ok {
		ns = uuid.NewSHA1(uuid.NameSpaceURL, []byte("deliveryboard:"+string(kind)))
	}
	return uuid.NewSHA1(ns, []byte(key)).String()
}

// identityKey joins the key parts with '|'. When every part is empty the
// whitespace-normalized raw line is used instead.
func identityKey(raw string, parts ...string) string {
	for _, p := range parts {
		if p != "" {
			return strings.Join(parts, "|")
		}
	}
	return strings.Join(strings.Fields(raw), " ")
}
