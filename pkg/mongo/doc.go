// Package mongo provides the MongoDB connection helper for hosts that run
// the notified ledger on MongoDB instead of Postgres (see
// ledger.MongoStore).
package mongo
