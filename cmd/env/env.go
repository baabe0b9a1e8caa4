package env

// Prefix is the env variable prefix for all nokycbot flags
const Prefix = "NOKYCBOT"
