package permissions

func init() {
	perms := []*Permission{
		{
			ID:          "admin.users",
			Module:      "admin",
			Description: "Manage user accounts",
		},
		{
			ID:          "admin.teams",
			Module:      "admin",
			Description: "Manage organizations and teams",
		},
		{
			ID:          "admin.roles",
			Module:      "admin",
			Description: "Manage roles and their permissions",
		},
		{
			ID:          "admin.settings",
			Module:      "admin",
			Description: "Manage system settings and story access grants",
		},
		{
			ID:          "stories.view",
			Module:      "stories",
			Description: "View stories",
		},
		{
			ID:          "stories.create",
			Module:      "stories",
			Description: "Create and parse new stories",
		},
		{
			ID:          "stories.edit",
			Module:      "stories",
			Description: "Edit stories and their breakdown",
		},
		{
			ID:          "stories.delete",
			Module:      "stories",
			Description: "Delete stories",
		},
		{
			ID:          "stories.duplicate",
			Module:      "stories",
			Description: "Duplicate stories",
		},
		{
			ID:          "stories.export",
			Module:      "stories",
			Description: "Export story breakdowns",
		},
		{
			ID:          "assets.view",
			Module:      "assets",
			Description: "View story assets",
		},
		{
			ID:          "assets.create",
			Module:      "assets",
			Description: "Create story assets",
		},
		{
			ID:          "assets.edit",
			Module:      "assets",
			Description: "Edit story assets",
		},
		{
			ID:          "assets.delete",
			Module:      "assets",
			Description: "Delete story assets",
		},
		{
			ID:          "assets.assign",
			Module:      "assets",
			Description: "Assign assets to departments and talent",
		},
		{
			ID:          "assets.approve",
			Module:      "assets",
			Description: "Approve finished assets",
		},
		{
			ID:          "shots.view",
			Module:      "shots",
			Description: "View shots",
		},
		{
			ID:          "shots.create",
			Module:      "shots",
			Description: "Create shots",
		},
		{
			ID:          "shots.edit",
			Module:      "shots",
			Description: "Edit shots",
		},
		{
			ID:          "shots.delete",
			Module:      "shots",
			Description: "Delete shots",
		},
		{
			ID:          "shots.assign",
			Module:      "shots",
			Description: "Assign shots to departments and talent",
		},
		{
			ID:          "shots.approve",
			Module:      "shots",
			Description: "Approve finished shots",
		},
		{
			ID:          "departments.view",
			Module:      "departments",
			Description: "View departments and assignments",
		},
		{
			ID:          "departments.assign",
			Module:      "departments",
			Description: "Assign departments to work items",
		},
		{
			ID:          "departments.manage",
			Module:      "departments",
			Description: "Create, edit and deactivate departments",
		},
		{
			ID:          "talent.view",
			Module:      "talent",
			Description: "View the talent pool",
		},
		{
			ID:          "talent.assign",
			Module:      "talent",
			Description: "Assign talent to work items",
		},
		{
			ID:          "talent.manage",
			Module:      "talent",
			Description: "Create, edit and delete talent records",
		},
		{
			ID:          "costs.view",
			Module:      "costs",
			Description: "View cost breakdowns",
		},
		{
			ID:          "costs.edit",
			Module:      "costs",
			Description: "Edit cost estimates",
		},
		{
			ID:          "costs.export",
			Module:      "costs",
			Description: "Export cost reports",
		},
		{
			ID:          "generation.create",
			Module:      "generation",
			Description: "Run AI story parsing and regeneration",
		},
		{
			ID:          "generation.view",
			Module:      "generation",
			Description: "View AI generation results",
		},
		{
			ID:          "generation.delete",
			Module:      "generation",
			Description: "Delete AI generation results",
		},
		{
			ID:          "art_control.view",
			Module:      "art_control",
			Description: "View art control settings",
		},
		{
			ID:          "art_control.edit",
			Module:      "art_control",
			Description: "Edit art control settings",
		},
	}

	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}
