package database

// All timestamps are epoch milliseconds; date bucketing works off
// FoodLog.CreatedAt.

// Food is a catalog entry. UserID is nil for global catalog foods.
type Food struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	CreatedAt   int64   `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt   int64   `gorm:"autoUpdateTime:milli" json:"updatedAt"`
	UserID      *string `gorm:"size:64;index" json:"userId"`
	Name        string  `gorm:"size:50;not null" json:"name"`
	ServingSize int     `gorm:"not null" json:"servingSize"`
	ServingUnit string  `gorm:"size:2;not null" json:"servingUnit"` // "g" or "ml"
	Protein     float64 `gorm:"not null" json:"protein"`
	Carbs       float64 `gorm:"not null" json:"carbs"`
	Fat         float64 `gorm:"not null" json:"fat"`
	Barcode     *string `gorm:"size:50;uniqueIndex" json:"barcode"`
}

// ServingUnit is an alternate named unit for one food, with the number of
// grams a single unit represents.
type ServingUnit struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli" json:"updatedAt"`
	FoodID          uint   `gorm:"not null;index" json:"foodId"`
	Food            Food   `json:"-"`
	Name            string `gorm:"size:50;not null" json:"name"`
	GramsEquivalent int    `gorm:"not null" json:"gramsEquivalent"`
}

// FoodLog records a consumed quantity of a food, measured either in base
// servings or in the grams-equivalent of an alternate serving unit.
type FoodLog struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	CreatedAt     int64        `gorm:"autoCreateTime:milli;index:idx_food_logs_user_date,priority:2" json:"createdAt"`
	UpdatedAt     int64        `gorm:"autoUpdateTime:milli" json:"updatedAt"`
	UserID        string       `gorm:"size:64;not null;index:idx_food_logs_user_date,priority:1" json:"userId"`
	FoodID        uint         `gorm:"not null" json:"foodId"`
	Food          Food         `json:"-"`
	ServingUnitID *uint        `json:"servingUnitId"`
	ServingUnit   *ServingUnit `json:"-"`
	Quantity      float64      `gorm:"not null" json:"quantity"`
}

// Goal is a time-bounded set of daily macro targets. The interval is
// [StartAt, EndAt); a nil EndAt means the goal is open-ended.
type Goal struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
	UpdatedAt   int64  `gorm:"autoUpdateTime:milli" json:"updatedAt"`
	UserID      string `gorm:"size:64;not null;index:idx_goals_user_period,priority:1" json:"userId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	StartAt     int64  `gorm:"not null;index:idx_goals_user_period,priority:2" json:"startAt"`
	EndAt       *int64 `gorm:"index:idx_goals_user_period,priority:3" json:"endAt"`
	ProteinGoal int    `gorm:"not null" json:"proteinGoal"`
	CarbsGoal   int    `gorm:"not null" json:"carbsGoal"`
	FatGoal     int    `gorm:"not null" json:"fatGoal"`
}
