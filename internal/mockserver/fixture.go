package mockserver

import "github.com/alright-hq/alright-client/pkg/alright"

type fixtureDish struct {
	alright.DishDTO
	Allergens []string
}

// defaultDishes is the menu served for every day.
func defaultDishes() []fixtureDish {
	return []fixtureDish{
		{DishDTO: alright.DishDTO{ID: "id1", Name: "Carbonara", Category: alright.Entry, PictureURL: "primo1.png"}, Allergens: []string{"gluten", "eggs", "milk"}},
		{DishDTO: alright.DishDTO{ID: "id2", Name: "Lasagna", Category: alright.Entry, PictureURL: "primo2.png"}, Allergens: []string{"gluten", "milk"}},
		{DishDTO: alright.DishDTO{ID: "id3", Name: "Bisteca", Category: alright.Main, PictureURL: "secondo1.png"}},
		{DishDTO: alright.DishDTO{ID: "id4", Name: "Cotoletta", Category: alright.Main, PictureURL: "secondo2.png"}, Allergens: []string{"gluten", "eggs"}},
		{DishDTO: alright.DishDTO{ID: "id5", Name: "Insalata", Category: alright.Side, PictureURL: "contorno1.png"}},
		{DishDTO: alright.DishDTO{ID: "id6", Name: "Pomodorini", Category: alright.Side, PictureURL: "contorno2.png"}},
		{DishDTO: alright.DishDTO{ID: "id7", Name: "Patate", Category: alright.Side, PictureURL: "contorno3.png"}},
	}
}
