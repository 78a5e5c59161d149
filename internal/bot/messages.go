package bot

import "fmt"

const (
	msgWelcome = "Hi! Send me a product link and I will watch its price for you."

	msgEmptyList = "You are not tracking any items yet. Send a product link to start."

	msgSomethingWrong = "Something went wrong, please try again."

	msgRemoved = "No longer tracking this item."
)

func msgTracking(name string) string {
	return fmt.Sprintf("Now tracking %s. I will message you when the price drops.", name)
}

func msgListHeader(page, lastPage int) string {
	return fmt.Sprintf("Your tracked items (page %d of %d):", page, lastPage)
}

func msgItemDetail(name, url string) string {
	return name + "\n" + url
}
