package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is part of every key; bump it when the cached encoding of a
// topology or artifact changes so stale entries are never decoded.
const keyVersion = "v1"

// hashKey returns "<kind>:<keyVersion>:<sha256 of parts as JSON>".
func hashKey(kind string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// parts are strings and option structs of strings and bools
		panic("cache: unencodable key part: " + err.Error())
	}
	return kind + ":" + keyVersion + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. Inventories and topologies
// are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
