// Package memory implements ports.Driver over hashicorp/go-memdb,
// giving every command a single process-wide critical section per
// table (spec.md §4.3: a write transaction on the vlob_atom table
// serializes concurrent updates to the same vlob).
package memory

import (
	"github.com/hashicorp/go-memdb"
)

// Every row wrapper below carries a precomputed composite "Key" string
// field instead of relying on memdb's CompoundIndex, keeping the schema
// declarations flat and the lookups single-field.

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"organization": {
				Name: "organization",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
				},
			},
			"bootstrap_token": {
				Name: "bootstrap_token",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
				},
			},
			"user": {
				Name: "user",
				Indexes: map[string]*memdb.IndexSchema{
					"id":  {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"org": {Name: "org", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "Org"}},
				},
			},
			"user_invitation": {
				Name: "user_invitation",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
				},
			},
			"device": {
				Name: "device",
				Indexes: map[string]*memdb.IndexSchema{
					"id":  {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"org": {Name: "org", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "Org"}},
				},
			},
			"device_invitation": {
				Name: "device_invitation",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
				},
			},
			"realm": {
				Name: "realm",
				Indexes: map[string]*memdb.IndexSchema{
					"id":  {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"org": {Name: "org", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "Org"}},
				},
			},
			"realm_role": {
				Name: "realm_role",
				Indexes: map[string]*memdb.IndexSchema{
					"id":    {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"realm": {Name: "realm", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "RealmKey"}},
				},
			},
			"realm_vlob_update": {
				Name: "realm_vlob_update",
				Indexes: map[string]*memdb.IndexSchema{
					"id":    {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"realm": {Name: "realm", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "RealmKey"}},
				},
			},
			"vlob": {
				Name: "vlob",
				Indexes: map[string]*memdb.IndexSchema{
					"id":  {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"org": {Name: "org", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "Org"}},
				},
			},
			"vlob_atom": {
				Name: "vlob_atom",
				Indexes: map[string]*memdb.IndexSchema{
					"id":   {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"vlob": {Name: "vlob", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "VlobKey"}},
				},
			},
			"block": {
				Name: "block",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
				},
			},
			"message": {
				Name: "message",
				Indexes: map[string]*memdb.IndexSchema{
					"id":        {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
					"recipient": {Name: "recipient", Unique: false, Indexer: &memdb.StringFieldIndex{Field: "RecipientKey"}},
				},
			},
		},
	}
}
