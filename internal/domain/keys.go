package domain

// KeyPrefix namespaces every key cortyx writes to valkey.
const KeyPrefix = "cortyx:"
