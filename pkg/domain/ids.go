package domain

import (
	"github.com/google/uuid"

	dErrors "agrocert/pkg/domain-errors"
)

// Typed identifiers. Distinct types keep a FichaID from being passed where a
// GestionID is expected; construct them with the Parse* functions at trust
// boundaries.
type (
	UserID          uuid.UUID
	GestionID       uuid.UUID
	FichaID         uuid.UUID
	NoConformidadID uuid.UUID
	ArchivoID       uuid.UUID
	ComunidadID     uuid.UUID
	ProductorID     uuid.UUID
	ParcelaID       uuid.UUID
	TipoCultivoID   uuid.UUID
)

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id GestionID) String() string       { return uuid.UUID(id).String() }
func (id FichaID) String() string         { return uuid.UUID(id).String() }
func (id NoConformidadID) String() string { return uuid.UUID(id).String() }
func (id ArchivoID) String() string       { return uuid.UUID(id).String() }
func (id ComunidadID) String() string     { return uuid.UUID(id).String() }
func (id ProductorID) String() string     { return uuid.UUID(id).String() }
func (id ParcelaID) String() string       { return uuid.UUID(id).String() }
func (id TipoCultivoID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id GestionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id FichaID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id NoConformidadID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ArchivoID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ComunidadID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ProductorID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ParcelaID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id TipoCultivoID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id GestionID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id FichaID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id NoConformidadID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ArchivoID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id ComunidadID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ProductorID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ParcelaID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id TipoCultivoID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *GestionID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *FichaID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *NoConformidadID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ArchivoID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ComunidadID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ProductorID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ParcelaID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TipoCultivoID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseGestionID(s string) (GestionID, error) {
	u, err := parseUUID("gestion id", s)
	return GestionID(u), err
}

func ParseFichaID(s string) (FichaID, error) {
	u, err := parseUUID("ficha id", s)
	return FichaID(u), err
}

func ParseNoConformidadID(s string) (NoConformidadID, error) {
	u, err := parseUUID("no conformidad id", s)
	return NoConformidadID(u), err
}

func ParseArchivoID(s string) (ArchivoID, error) {
	u, err := parseUUID("archivo id", s)
	return ArchivoID(u), err
}

func ParseComunidadID(s string) (ComunidadID, error) {
	u, err := parseUUID("comunidad id", s)
	return ComunidadID(u), err
}

func ParseProductorID(s string) (ProductorID, error) {
	u, err := parseUUID("productor id", s)
	return ProductorID(u), err
}
