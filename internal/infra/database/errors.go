package database

import "fmt"

// Custom errors shared by the Postgres and in-memory stores
var ErrMemberNotFound = fmt.Errorf("member not found")
