// Package policy decides who may read or change which row.
//
// Every function here is pure: callers load the rows and pass them in.
// A nil row is never authorized.
package policy

import "secret-friends-backend/internal/models"

// CanViewFriendSecrets reports whether viewerID may read targetID's secrets.
// Visibility needs an accepted edge sent by the target and received by the
// viewer; an accepted edge in the opposite direction grants nothing.
func CanViewFriendSecrets(edge *models.FriendRequest, viewerID, targetID string) bool {
	if edge == nil || viewerID == "" || targetID == "" {
		return false
	}
	return edge.Status == models.FriendRequestAccepted &&
		edge.SenderID == targetID &&
		edge.ReceiverID == viewerID
}

// CanAccept reports whether actorID may accept the request
func CanAccept(edge *models.FriendRequest, actorID string) bool {
	return edge != nil && actorID != "" && edge.ReceiverID == actorID
}

// CanDelete reports whether actorID may decline or withdraw the request
func CanDelete(edge *models.FriendRequest, actorID string) bool {
	return edge != nil && actorID != "" && edge.IsParty(actorID)
}

// CanModifySecret reports whether actorID owns the secret
func CanModifySecret(secret *models.SecretMessage, actorID string) bool {
	return secret != nil && actorID != "" && secret.OwnerID == actorID
}

// CanSendRequest reports whether senderID may open an edge to receiverID
func CanSendRequest(senderID, receiverID string) bool {
	return senderID != "" && receiverID != "" && senderID != receiverID
}
