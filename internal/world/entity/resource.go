package entity

import "github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"

type Resource = resource.Resource
type Resources = resource.Resources
