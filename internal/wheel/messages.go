package wheel

import (
	"fmt"
	"strings"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/types"
)

const msgSomethingWrong = "Something went wrong. Please contact your admin."

func msgAlreadyHeld(mention, prize string) string {
	return fmt.Sprintf("%s won %s but already has it!", mention, prize)
}

func msgPenalty(window time.Duration) string {
	return fmt.Sprintf("You're spinning too much! Penalty increased. Wait about %d seconds after the consolation is removed to reset this penalty.", seconds(window))
}

func msgHold(hold time.Duration) string {
	return fmt.Sprintf("You will have this prize for %d seconds.", seconds(hold))
}

func msgPrizeRemoved(prize string) string {
	return fmt.Sprintf("Your prize role for %s has been removed!", prize)
}

func msgButtonEnabled(mention string, active time.Duration) string {
	return fmt.Sprintf("%s has enabled the Big Red Button! The button will be active for %d minutes!", mention, int64(active/time.Minute))
}

func msgButtonHowTo(prefix string) string {
	return fmt.Sprintf("Use %sSMASH to press it!", prefix)
}

const (
	msgButtonDeactivated = "The Big Red Button has been deactivated"
	msgButtonRoleLifted  = "Your Big Red Button role has been lifted!"
)

func msgButtonPressed(mention string) string {
	return fmt.Sprintf("%s has pressed the Big Red Button!", mention)
}

func msgButtonHold(hold time.Duration) string {
	return fmt.Sprintf("They will have the role for %d seconds!", seconds(hold))
}

// FormatPrizeList renders the prize list shown by the prizes command.
func FormatPrizeList(prizes []types.Prize, consolation *types.Prize) string {
	var b strings.Builder
	b.WriteString("The current prizes are:\n")
	for _, p := range prizes {
		fmt.Fprintf(&b, "> %s (1 in %d chance): %s!\n", p.Name, p.Odds, p.Description)
	}
	if consolation != nil {
		fmt.Fprintf(&b, "> %s: %s!", consolation.Name, consolation.Description)
	}
	return b.String()
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
