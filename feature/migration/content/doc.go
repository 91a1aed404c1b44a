// Package content implements content addressing for snapshot records.
//
// A record checksum is SHA-256 over a domain tag, a zero byte and the record's
// canonical JSON. The same function applied to a whole normalized payload gives
// the batch checksum used for whole-run idempotence. Records without a natural
// identifier get a derived row key built from a prefix and a truncated digest.
package content
