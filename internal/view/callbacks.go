// Package view builds the Russian-language messages and inline keyboards the
// bot sends. Nothing here talks to Telegram or the database.
package view

// Callback uniques. Payloads are numeric ids joined with "|".
const (
	// creation flows
	CbSport          = "sport"
	CbLocation       = "location"
	CbLocationCustom = "location_custom"
	CbConfirmGame    = "confirm_game"
	CbCancelGame     = "cancel_game"

	// game card
	CbJoinConfirmed    = "join_confirmed"
	CbJoinMaybe        = "join_maybe"
	CbLeaveGame        = "leave_game"
	CbShowParticipants = "show_participants"
	CbViewGame         = "view_game"
	CbDeleteGame       = "delete_game"

	// game lists
	CbFilterGames     = "filter_games"
	CbFilterTrainings = "filter_trainings"
	CbFilterAll       = "filter_all"

	// groups
	CbGroup            = "group"
	CbMyGroups         = "my_groups"
	CbMembers          = "members"
	CbLeaveGroup       = "leave_group"
	CbRemoveMember     = "remove_member"
	CbManage           = "manage"
	CbManageMembers    = "manage_members"
	CbRegenerateInvite = "regenerate_invite"

	// location creation
	CbLocationSport          = "location_sport"
	CbSelectExistingLocation = "select_existing_location"
	CbCreateNewLocation      = "create_new_location"
	CbConfirmLocation        = "confirm_location"
	CbCancelLocation         = "cancel_location"

	// location editing
	CbStartEditLocation   = "start_edit_location"
	CbEditLocationName    = "edit_location_name"
	CbEditLocationMap     = "edit_location_map"
	CbEditLocationSports  = "edit_location_sports"
	CbToggleLocationSport = "toggle_location_sport"
	CbSaveLocationSports  = "save_location_sports"
	CbCancelEditLocation  = "cancel_edit_location"
)

// Filter selects which upcoming events a list shows.
type Filter string

const (
	FilterGames     Filter = "games"
	FilterTrainings Filter = "trainings"
	FilterAll       Filter = "all"
)

// Unique returns the callback unique of the filter button.
func (f Filter) Unique() string {
	switch f {
	case FilterGames:
		return CbFilterGames
	case FilterTrainings:
		return CbFilterTrainings
	}
	return CbFilterAll
}
