package handlers

import (
	"github.com/vibralabs/vibra_backend/database"
	"github.com/vibralabs/vibra_backend/messaging"
)

// Messaging is the messaging core shared by the REST and websocket handlers.
var Messaging *messaging.Service

// InitServices wires services to the live database. Must run after ConnectDB.
func InitServices() {
	Messaging = messaging.NewService(messaging.NewGormStore(database.DB))
}
