// Package conversation implements the booking dialogue: a pure state machine
// driven by user events and an engine that interprets its effects.
package conversation

// Step is the active stage of a booking conversation.
type Step string

const (
	StepWelcome         Step = "welcome"
	StepName            Step = "name"
	StepPhone           Step = "phone"
	StepHairstyle       Step = "hairstyle"
	StepFriendOffer     Step = "friend_offer"
	StepFriendName      Step = "friend_name"
	StepFriendPhone     Step = "friend_phone"
	StepFriendHairstyle Step = "friend_hairstyle"
	StepConfirmFriend   Step = "confirm_friend_booking"
	StepDate            Step = "date"
	StepTime            Step = "time"
	StepConfirming      Step = "confirming"
	StepFinal           Step = "final"
)

// clientIndex returns which client record a step writes to.
func (s Step) clientIndex() int {
	switch s {
	case StepFriendName, StepFriendPhone, StepFriendHairstyle:
		return 1
	default:
		return 0
	}
}
