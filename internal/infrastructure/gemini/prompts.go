package gemini

import (
	"fmt"
	"strings"

	"github.com/nearbuy/backend/internal/domain"
)

// The prompts pin the model to a strict markdown block format ("### [Name]"
// headings, "**Label:** value" fields, "- Name: $Price" lines) so the
// streaming parser can split and extract entities incrementally.

func locationPhrase(loc domain.Location, withQuery, nearby string) string {
	if loc.Query != "" {
		return fmt.Sprintf(withQuery, loc.Query)
	}
	return nearby
}

func shoppingPrompt(shoppingList string, loc domain.Location) string {
	where := locationPhrase(loc, "at stores near %q", "at nearby stores")

	return fmt.Sprintf(`You are an expert local shopping assistant. Your goal is to find items from the user's shopping list %s, providing a rich set of options.

User's Shopping List:
%s

Instructions:
1.  For **each individual item** on the user's shopping list, you **must find at least three different local store options**.
2.  The selection of stores should provide the user with meaningful choices based on a balance of price, distance, and store quality/reputation.
3.  Crucially, ensure you include a mix of store types. This includes large "big-box" retailers like Walmart Supercenter and Target, as well as traditional grocery stores and smaller specialty shops, to provide a comprehensive range of choices.
4.  Consolidate all findings into a list of stores. If an item is found at a store, list its realistic, estimated price.
5.  For each store, provide its name, full address, estimated distance from the user's location, and its Google Maps review rating (e.g., '4.5 stars (1,234 reviews)').
6.  Calculate a subtotal for all the found items at each store.
7.  Format your entire response *only* using the following markdown structure. Do not add any introductory or concluding text outside of this format. Ensure every item from the original list is present in at least three of the store blocks combined. Stream each store block as soon as you find it.

### [Store Name 1]
**Address:** [Full Store Address]
**Distance:** [e.g., 1.2 miles]
**Reviews:** [e.g., 4.5 stars (1,234 reviews)]
- [Item Name 1]: $[Price]
- [Item Name 2]: $[Price]
**Subtotal:** $[Total Price]

### [Store Name 2]
**Address:** [Full Store Address]
**Distance:** [e.g., 3.5 miles]
**Reviews:** [e.g., 4.2 stars (876 reviews)]
- [Item Name 1]: $[Price]
- [Item Name 3]: $[Price]
**Subtotal:** $[Total Price]
`, where, shoppingList)
}

func gasPrompt(loc domain.Location) string {
	where := locationPhrase(loc, "near %q", "nearby")

	return fmt.Sprintf(`You are an expert local gas price assistant. Your goal is to find current gas prices for several stations within a 15-mile radius %s.

Instructions:
1.  Find at least 5 different gas stations within a 15-mile radius.
2.  For each station, provide its name, full address, estimated distance from the user's location, and its Google Maps review rating (e.g., '4.5 stars (1,234 reviews)').
3.  For each station, find the current price per gallon for Regular, Mid-grade, and Premium gasoline. If Diesel prices are available, include them as well. The prices should be realistic and as up-to-date as possible.
4.  Format your entire response *only* using the following markdown structure. Do not add any introductory or concluding text. Stream each gas station block as soon as you find it.

### [Gas Station Name 1]
**Address:** [Full Store Address]
**Distance:** [e.g., 1.2 miles]
**Reviews:** [e.g., 4.5 stars (1,234 reviews)]
- Regular: $[Price]
- Mid-grade: $[Price]
- Premium: $[Price]

### [Gas Station Name 2]
**Address:** [Full Store Address]
**Distance:** [e.g., 3.5 miles]
**Reviews:** [e.g., 4.2 stars (876 reviews)]
- Regular: $[Price]
- Mid-grade: $[Price]
- Premium: $[Price]
- Diesel: $[Price]
`, where)
}

func routePrompt(stores []domain.Store, shoppingList string) string {
	var storeData strings.Builder
	for i, store := range stores {
		if i > 0 {
			storeData.WriteString("\n\n")
		}
		fmt.Fprintf(&storeData, "Store: %s\nItems:\n", store.Name)
		for _, item := range store.Items {
			fmt.Fprintf(&storeData, "- %s: $%.2f\n", item.Name, item.Price)
		}
	}

	return fmt.Sprintf(`You are an expert shopping route optimizer. Given the user's shopping list and a list of nearby stores with available items and prices, create the most efficient multi-stop shopping trip. The goal is to get all items on the list for the lowest possible total cost.

User's Full Shopping List:
%s

Available Stores and Items:
%s

Instructions:
1.  Analyze the items available at each store and their prices.
2.  Determine the best combination of stores to visit to acquire all items on the user's list for the minimum total cost. A user might not need to visit every store.
3.  Create a step-by-step route. For each stop, list the store name and exactly which items the user should buy there from their original list.
4.  Calculate the total cost for all items purchased across all stops.
5.  Provide an estimated total travel distance for the complete route (e.g., "4.8 miles").
6.  Format your response *only* as a single, valid JSON object following this exact structure. Do not include markdown formatting, code fences, or any text outside of the JSON object.

{
  "stops": [
    { "storeName": "Store A", "itemsToBuy": ["1 gallon of milk", "Whole wheat bread"] },
    { "storeName": "Store C", "itemsToBuy": ["A dozen eggs"] }
  ],
  "totalCost": 15.75,
  "totalDistance": "4.8 miles"
}
`, shoppingList, storeData.String())
}

func listPrompt(request string) string {
	return fmt.Sprintf(`You are a helpful shopping assistant. Create a shopping list for the following request. Respond with one item per line and nothing else - no headers, no numbering, no commentary.

Request:
%s
`, request)
}
