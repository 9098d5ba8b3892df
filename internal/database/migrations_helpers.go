package database

import (
	"sort"

	"github.com/virtualstage/backlot/internal/permissions"
)

type roleSeed struct {
	id          string
	name        string
	description string
	permissions []string
}

func defaultRoles() []roleSeed {
	return []roleSeed{
		{
			id:          "super-admin",
			name:        "Super Admin",
			description: "Full system access with all permissions",
			permissions: allPermissionIDs(),
		},
		{
			id:          "admin",
			name:        "Admin",
			description: "Team administrator with management permissions",
			permissions: []string{
				"admin.users", "admin.teams",
				"stories.view", "stories.create", "stories.edit", "stories.delete", "stories.duplicate", "stories.export",
				"assets.view", "assets.create", "assets.edit", "assets.delete", "assets.assign", "assets.approve",
				"shots.view", "shots.create", "shots.edit", "shots.delete", "shots.assign", "shots.approve",
				"departments.view", "departments.assign", "departments.manage",
				"talent.view", "talent.assign", "talent.manage",
				"costs.view", "costs.edit", "costs.export",
				"generation.create", "generation.view", "generation.delete",
				"art_control.view", "art_control.edit",
			},
		},
		{
			id:          "project-manager",
			name:        "Project Manager",
			description: "Manage projects and assign work",
			permissions: []string{
				"stories.view", "stories.create", "stories.edit", "stories.duplicate", "stories.export",
				"assets.view", "assets.create", "assets.edit", "assets.assign", "assets.approve",
				"shots.view", "shots.create", "shots.edit", "shots.assign", "shots.approve",
				"departments.view", "departments.assign",
				"talent.view", "talent.assign",
				"costs.view", "costs.export",
				"generation.create", "generation.view",
				"art_control.view", "art_control.edit",
			},
		},
		{
			id:          "artist",
			name:        "Artist/Contractor",
			description: "View and work on assigned tasks",
			permissions: []string{
				"stories.view",
				"assets.view",
				"shots.view",
				"departments.view",
				"talent.view",
				"generation.view",
			},
		},
		{
			id:          "reviewer",
			name:        "Reviewer",
			description: "Review and approve work",
			permissions: []string{
				"stories.view",
				"assets.view", "assets.approve",
				"shots.view", "shots.approve",
				"departments.view",
			},
		},
		{
			id:          "viewer",
			name:        "Viewer",
			description: "Read-only access to stories",
			permissions: []string{
				"stories.view",
				"assets.view",
				"shots.view",
				"departments.view",
			},
		},
	}
}

func allPermissionIDs() []string {
	perms := permissions.GetAll()
	ids := make([]string, 0, len(perms))
	for id := range perms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type departmentSeed struct {
	departmentType string
	name           string
	description    string
	icon           string
	color          string
	displayOrder   int
}

func defaultDepartments() []departmentSeed {
	return []departmentSeed{
		{"concept_art", "Concept Art", "Initial visual designs and concepts", "🎨", "#E91E63", 1},
		{"modeling", "Modeling", "3D model creation", "🏗️", "#2196F3", 2},
		{"texturing", "Texturing", "Surface materials and textures", "🎨", "#FF9800", 3},
		{"rigging", "Rigging", "Character/object rigging for animation", "🎭", "#9C27B0", 4},
		{"animation", "Animation", "Character and object animation", "🎬", "#00BCD4", 5},
		{"programming", "Programming/Technology", "Technical implementation, tools, pipelines", "💻", "#607D8B", 6},
		{"effects", "Effects", "Visual effects, particle systems, simulations", "✨", "#FFC107", 7},
		{"lighting_rendering", "Lighting and Rendering", "Scene lighting and final rendering", "💡", "#FFEB3B", 8},
		{"farm", "Farm", "Render farm management and queue", "🖥️", "#795548", 9},
		{"previs", "Previs (Pre-visualization)", "3D pre-visualization, animatics, rough animation", "🎥", "#E91E63", 10},
		{"story_script", "Story/Script", "Story development and script writing", "📝", "#3F51B5", 11},
		{"pre_production", "Pre-Production", "Planning, storyboards, reference gathering", "📋", "#009688", 12},
		{"post_production", "Post-Production", "Compositing, editing, final assembly", "🎞️", "#9E9E9E", 13},
		{"audio_sound", "Audio/Sound", "Sound design, music, voiceover", "🔊", "#FF5722", 14},
		{"qa", "Quality Assurance", "Testing, bug tracking, quality control", "✅", "#4CAF50", 15},
		{"project_management", "Project Management", "Overall project coordination", "📊", "#1976D2", 16},
		{"art_direction", "Art Direction", "Visual style oversight", "🎯", "#E91E63", 17},
		{"environment_design", "Environment Design", "Environment and set design", "🌍", "#4CAF50", 18},
		{"character_design", "Character Design", "Character concept and design", "👤", "#FF9800", 19},
		{"asset_management", "Asset Management", "Asset organization and version control", "📦", "#607D8B", 20},
		{"layout", "Layout", "Scene layout and camera placement", "📐", "#00BCD4", 21},
		{"compositing", "Compositing", "Final compositing and integration", "🎨", "#9C27B0", 22},
		{"review_approval", "Review/Approval", "Review cycles and approvals", "👁️", "#F44336", 23},
	}
}
