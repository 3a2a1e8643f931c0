// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package game

const (
	// MinPlayers is the minimum number of active players required to
	// start a round
	MinPlayers = 5

	// ScoreInvestigatorCorrect is awarded to the investigator for
	// accusing the guilty player
	ScoreInvestigatorCorrect = 2

	// ScoreGuiltyUncaught is awarded to the guilty player when someone
	// else is accused
	ScoreGuiltyUncaught = 2

	// ScoreInnocentAccused is awarded to an innocent who was wrongly
	// accused
	ScoreInnocentAccused = 1
)
