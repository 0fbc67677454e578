/*
Package gateway defines the real-time protocol spoken between draft rooms
and their clients, and composes outbound messages from draft state.

Client -> Server (one JSON object per websocket frame)

	{"type": "join", "nickname": "alice", "position": "A"}
	{"type": "ready", "position": "B", "ready": true, "pin": "1234"}
	{"type": "leave", "position": "B"}
	{"type": "start", "position": "A"}
	{"type": "pick", "position": "A", "playerId": 17}
	{"type": "forcePick", "playerId": 17, "targetPosition": "B", "forcingPosition": "A"}
	{"type": "undo"}
	{"type": "draftState"}
	{"type": "lobbyState"}

Server -> Client

Every frame is an Envelope:

	{"type": "LOBBY_STATE", "topic": "/topic/draft/{id}/lobby", "payload": {...}, "timestamp": "..."}

	Topic                          Types
	/topic/draft/{id}/lobby        PARTICIPANT_JOINED, PARTICIPANT_LEFT, DRAFT_STARTED, LOBBY_STATE
	/topic/draft/{id}              DRAFT_STATE
	/user/queue/errors             ERROR
	/user/queue/draft-state        DRAFT_STATE (reply to draftState)
	/user/queue/lobby-state        LOBBY_STATE (reply to lobbyState)
	/user/queue/joined             JOINED (reply to a successful join)

Per command, broadcasts go out in this order:

	join       PARTICIPANT_JOINED, LOBBY_STATE
	ready      LOBBY_STATE
	leave      PARTICIPANT_LEFT, LOBBY_STATE
	start      DRAFT_STARTED, LOBBY_STATE, DRAFT_STATE
	pick       DRAFT_STATE
	forcePick  DRAFT_STATE
	undo       DRAFT_STATE

Errors are sent only to the client that caused them.
*/
package gateway
